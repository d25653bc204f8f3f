// Package prefs persists per-module column preferences.
//
// Each module namespace owns three independent JSON documents in a key-value
// store: the visibility map, the order list and the width map. A document that
// is missing or fails to decode falls back to its default on read.
package prefs

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// PreferenceStore loads and saves the column view state of a module
type PreferenceStore interface {
	Load(module string) models.ColumnViewState
	Save(module string, state models.ColumnViewState) error
}

// KV is a string key-value backend
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

func VisibilityKey(module string) string { return module + "_column_visibility" }
func OrderKey(module string) string      { return module + "_column_order" }
func WidthsKey(module string) string     { return module + "_column_widths" }

// Store implements PreferenceStore on top of a KV backend
type Store struct {
	kv     KV
	logger zerolog.Logger
}

// NewStore creates a preference store over kv
func NewStore(kv KV, logger zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger.With().Str("component", "prefs").Logger(),
	}
}

// Load reads the three documents for module. It never fails; an unreadable
// entry is logged and left at its zero value as a whole.
func (s *Store) Load(module string) models.ColumnViewState {
	return models.ColumnViewState{
		Visibility: decode[map[string]bool](s, VisibilityKey(module)),
		Order:      decode[[]string](s, OrderKey(module)),
		Widths:     decode[map[string]string](s, WidthsKey(module)),
	}
}

func decode[T any](s *Store, key string) T {
	var zero T
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to read preference")
		return zero
	}
	if !ok || raw == "" {
		return zero
	}
	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt preference")
		return zero
	}
	return value
}

// Save writes all three documents for module
func (s *Store) Save(module string, state models.ColumnViewState) error {
	docs := []struct {
		key   string
		value interface{}
	}{
		{VisibilityKey(module), state.Visibility},
		{OrderKey(module), state.Order},
		{WidthsKey(module), state.Widths},
	}

	for _, doc := range docs {
		data, err := json.Marshal(doc.value)
		if err != nil {
			return fmt.Errorf("failed to encode preference %s: %w", doc.key, err)
		}
		if err := s.kv.Set(doc.key, string(data)); err != nil {
			return fmt.Errorf("failed to write preference %s: %w", doc.key, err)
		}
	}
	return nil
}

// Reset removes every document of module
func (s *Store) Reset(module string) error {
	for _, key := range []string{VisibilityKey(module), OrderKey(module), WidthsKey(module)} {
		if err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("failed to delete preference %s: %w", key, err)
		}
	}
	return nil
}
