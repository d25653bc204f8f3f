package savedfilters

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// FileName is the saved filters file inside the config directory
const FileName = "saved_filters.yaml"

var (
	ErrNotFound      = errors.New("saved filter not found")
	ErrDuplicateName = errors.New("a saved filter with this name already exists")
)

// entry is the on-disk form of a saved filter
type entry struct {
	models.SavedFilter `yaml:",inline"`
	CreatedAt          time.Time `yaml:"created_at"`
	UpdatedAt          time.Time `yaml:"updated_at"`
	UsageCount         int       `yaml:"usage_count"`
	LastUsed           time.Time `yaml:"last_used,omitempty"`
}

// Manager stores saved filters for every module in one YAML file
type Manager struct {
	mu      sync.RWMutex
	path    string
	entries []entry
}

// NewManager creates a manager backed by <configDir>/saved_filters.yaml
func NewManager(configDir string) (*Manager, error) {
	m := &Manager{
		path:    filepath.Join(configDir, FileName),
		entries: []entry{},
	}

	// Load existing filters if file exists
	if _, err := os.Stat(m.path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load saved filters: %w", err)
		}
	}

	return m, nil
}

// Path returns the backing file
func (m *Manager) Path() string {
	return m.path
}

// Load reads saved filters from disk
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read saved filters file: %w", err)
	}

	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse saved filters: %w", err)
	}

	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return nil
}

// save writes the file; callers hold the lock
func (m *Manager) save() error {
	data, err := yaml.Marshal(m.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal saved filters: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write saved filters file: %w", err)
	}
	return nil
}

// Add stores a new saved filter and returns it with its assigned ID.
// Names are unique per module, compared case-insensitively.
func (m *Manager) Add(f models.SavedFilter) (models.SavedFilter, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return models.SavedFilter{}, fmt.Errorf("saved filter name cannot be empty")
	}
	if f.Logic != models.LogicOr {
		f.Logic = models.LogicAnd
	}
	if f.Filters == nil {
		f.Filters = models.FilterSet{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.Module == f.Module && strings.EqualFold(e.Name, f.Name) {
			return models.SavedFilter{}, fmt.Errorf("%w: '%s'", ErrDuplicateName, f.Name)
		}
	}

	now := time.Now()
	f.ID = uuid.New().String()
	f.Filters = f.Filters.Clone()
	m.entries = append(m.entries, entry{SavedFilter: f, CreatedAt: now, UpdatedAt: now})

	if err := m.save(); err != nil {
		m.entries = m.entries[:len(m.entries)-1]
		return models.SavedFilter{}, fmt.Errorf("failed to save filter: %w", err)
	}
	return f, nil
}

// Rename changes a saved filter's name
func (m *Manager) Rename(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("saved filter name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for _, e := range m.entries {
		if e.ID != id && e.Module == m.entries[idx].Module && strings.EqualFold(e.Name, name) {
			return fmt.Errorf("%w: '%s'", ErrDuplicateName, name)
		}
	}

	m.entries[idx].Name = name
	m.entries[idx].UpdatedAt = time.Now()
	return m.save()
}

// Delete removes a saved filter by ID
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	if err := m.save(); err != nil {
		return fmt.Errorf("failed to save filters after deletion: %w", err)
	}
	return nil
}

// Get returns a saved filter by ID
func (m *Manager) Get(id string) (models.SavedFilter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return models.SavedFilter{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.entries[idx].SavedFilter, nil
}

// List returns the saved filters of a module sorted by name
func (m *Manager) List(module string) []models.SavedFilter {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.SavedFilter{}
	for _, e := range m.entries {
		if e.Module == module {
			out = append(out, e.SavedFilter)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Search matches module filters by name or filter key
func (m *Manager) Search(module, query string) []models.SavedFilter {
	all := m.List(module)
	if query == "" {
		return all
	}

	query = strings.ToLower(query)
	var results []models.SavedFilter
	for _, f := range all {
		if strings.Contains(strings.ToLower(f.Name), query) {
			results = append(results, f)
			continue
		}
		for key := range f.Filters {
			if strings.Contains(strings.ToLower(key), query) {
				results = append(results, f)
				break
			}
		}
	}
	return results
}

// RecordUsage bumps the usage counter of a saved filter
func (m *Manager) RecordUsage(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.entries[idx].UsageCount++
	m.entries[idx].LastUsed = time.Now()
	if err := m.save(); err != nil {
		return fmt.Errorf("failed to save usage statistics: %w", err)
	}
	return nil
}

// MostUsed returns a module's filters by descending usage
func (m *Manager) MostUsed(module string, limit int) []models.SavedFilter {
	m.mu.RLock()
	var sorted []entry
	for _, e := range m.entries {
		if e.Module == module {
			sorted = append(sorted, e)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	out := make([]models.SavedFilter, len(sorted))
	for i, e := range sorted {
		out[i] = e.SavedFilter
	}
	return out
}

func (m *Manager) indexOf(id string) int {
	for i, e := range m.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
