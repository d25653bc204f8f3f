// Package views opens configured list views: a row source plus an engine
// wired to the preference store and the saved filters file.
package views

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rebeliceyang/lazylist/internal/config"
	"github.com/rebeliceyang/lazylist/internal/listview"
	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/prefs"
	"github.com/rebeliceyang/lazylist/internal/savedfilters"
	"github.com/rebeliceyang/lazylist/internal/source"
)

// Options configures a Manager
type Options struct {
	Config *config.Config
	// SourceOverride replaces the data path of every view; a module with no
	// configuration becomes an ad-hoc view over this path
	SourceOverride string
	// Prefs and Saved are opened from Config.Storage when nil
	Prefs  prefs.PreferenceStore
	Saved  *savedfilters.Manager
	Logger zerolog.Logger
}

// opened is a source kept open across engines of the same module
type opened struct {
	module   string
	cfg      config.ViewConfig
	src      source.Source
	openedAt time.Time
}

// Manager caches open sources per module and hands out fresh engines
type Manager struct {
	cfg      *config.Config
	override string
	prefs    prefs.PreferenceStore
	saved    *savedfilters.Manager
	kv       *prefs.SQLiteKV
	logger   zerolog.Logger

	sources map[string]*opened
	active  string
	mu      sync.RWMutex
}

// NewManager opens the preference database and the saved filters file
func NewManager(opts Options) (*Manager, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}

	m := &Manager{
		cfg:      cfg,
		override: opts.SourceOverride,
		prefs:    opts.Prefs,
		saved:    opts.Saved,
		logger:   opts.Logger.With().Str("component", "views").Logger(),
		sources:  make(map[string]*opened),
	}

	if m.prefs == nil {
		kv, err := prefs.NewSQLiteKV(cfg.Storage.PreferencesPath)
		if err != nil {
			return nil, err
		}
		m.kv = kv
		m.prefs = prefs.NewStore(kv, opts.Logger)
	}

	if m.saved == nil {
		saved, err := savedfilters.NewManager(cfg.Storage.SavedFiltersDir)
		if err != nil {
			_ = m.Close()
			return nil, err
		}
		m.saved = saved
	}

	return m, nil
}

// Config returns the loaded configuration
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Saved returns the saved filters manager
func (m *Manager) Saved() *savedfilters.Manager {
	return m.saved
}

// Prefs returns the preference store
func (m *Manager) Prefs() prefs.PreferenceStore {
	return m.prefs
}

// DefaultModule is the module opened when none is named
func (m *Manager) DefaultModule() string {
	if d := strings.ToLower(m.cfg.General.DefaultModule); d != "" {
		if _, err := m.cfg.View(d); err == nil || m.override != "" {
			return d
		}
	}
	if modules := m.cfg.Modules(); len(modules) > 0 {
		return modules[0]
	}
	return listview.DefaultModule
}

// Modules lists the modules that can be opened
func (m *Manager) Modules() []string {
	modules := m.cfg.Modules()
	if m.override == "" {
		return modules
	}
	def := m.DefaultModule()
	for _, mod := range modules {
		if mod == def {
			return modules
		}
	}
	modules = append(modules, def)
	sort.Strings(modules)
	return modules
}

// ViewConfig resolves a module's configuration, applying the source override
func (m *Manager) ViewConfig(module string) (config.ViewConfig, error) {
	view, err := m.cfg.View(module)
	if err != nil {
		if m.override == "" || !errors.Is(err, config.ErrUnknownView) {
			return config.ViewConfig{}, err
		}
		base := filepath.Base(m.override)
		return config.ViewConfig{
			Title:  strings.TrimSuffix(base, filepath.Ext(base)),
			Source: models.SourceConfig{Path: m.override},
		}, nil
	}

	if m.override != "" {
		view.Source = models.SourceConfig{
			Path:     m.override,
			IDColumn: view.Source.IDColumn,
		}
		view.Pushdown = view.Pushdown && strings.HasSuffix(strings.ToLower(m.override), ".db")
	}
	return view, nil
}

// Title returns the display title of a module
func (m *Manager) Title(module string) string {
	view, err := m.ViewConfig(module)
	if err != nil || view.Title == "" {
		return module
	}
	return view.Title
}

// source returns the module's open source, opening it on first use
func (m *Manager) source(ctx context.Context, module string) (*opened, error) {
	m.mu.RLock()
	o, ok := m.sources[module]
	m.mu.RUnlock()
	if ok {
		return o, nil
	}

	view, err := m.ViewConfig(module)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// another caller may have opened it meanwhile
	if o, ok := m.sources[module]; ok {
		return o, nil
	}

	src, err := source.Open(ctx, view.Source, view.Filters, m.logger.With().Str("module", module).Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", module, err)
	}

	o = &opened{module: module, cfg: view, src: src, openedAt: time.Now()}
	m.sources[module] = o
	m.logger.Debug().Str("module", module).Str("source", view.Source.String()).Msg("source opened")
	return o, nil
}

// Open returns a new view for module with column preferences and saved
// filters loaded. Rows are not loaded until View.Load.
func (m *Manager) Open(ctx context.Context, module string) (*View, error) {
	module = strings.ToLower(module)
	if module == "" {
		module = m.DefaultModule()
	}

	o, err := m.source(ctx, module)
	if err != nil {
		return nil, err
	}

	features := listview.Features{
		Filters:     m.cfg.Features.Filters,
		BulkActions: m.cfg.Features.BulkActions,
		Pagination:  m.cfg.Features.Pagination,
		Export:      m.cfg.Features.Export,
	}
	logger := m.logger.With().Str("module", module).Logger()

	engine := listview.New(listview.Options{
		Module:        module,
		Columns:       o.cfg.ColumnsFor(nil),
		FilterFields:  o.cfg.Filters,
		QuickFilters:  o.cfg.QuickFilters,
		SavedFilters:  m.saved.List(module),
		CurrentUserID: m.cfg.General.CurrentUser,
		Store:         m.prefs,
		OnSaveFilter: func(f models.SavedFilter) (models.SavedFilter, error) {
			f.Module = module
			return m.saved.Add(f)
		},
		OnDeleteFilter: m.saved.Delete,
		Features:       &features,
		Logger:         &logger,
	})

	return &View{
		Module: module,
		Title:  o.cfg.Title,
		Config: o.cfg,
		Engine: engine,
		src:    o.src,
		logger: logger,
	}, nil
}

// SetActive marks the module shown by the host
func (m *Manager) SetActive(module string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = module
}

// GetActive returns the active module, or "" if none
func (m *Manager) GetActive() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Reopen closes the module's source so the next Open connects again
func (m *Manager) Reopen(module string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.sources[module]
	if !ok {
		return nil
	}
	delete(m.sources, module)
	return o.src.Close()
}

// Close closes every open source and the preference database
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for id, o := range m.sources {
		if err := o.src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", id, err))
		}
		delete(m.sources, id)
	}
	if m.kv != nil {
		if err := m.kv.Close(); err != nil {
			errs = append(errs, err)
		}
		m.kv = nil
	}
	return errors.Join(errs...)
}
