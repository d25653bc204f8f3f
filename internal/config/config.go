package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// AppName names the config directory and env prefix
const AppName = "lazylist"

// ErrUnknownView is returned when a module has no view configuration
var ErrUnknownView = errors.New("unknown view")

// Config holds all application configuration
type Config struct {
	General  GeneralConfig         `mapstructure:"general"`
	UI       UIConfig              `mapstructure:"ui"`
	Log      LogConfig             `mapstructure:"log"`
	Server   ServerConfig          `mapstructure:"server"`
	Storage  StorageConfig         `mapstructure:"storage"`
	Features FeaturesConfig        `mapstructure:"features"`
	Views    map[string]ViewConfig `mapstructure:"views"`
}

type GeneralConfig struct {
	DefaultModule string `mapstructure:"default_module"`
	CurrentUser   string `mapstructure:"current_user"`
	PageSize      int    `mapstructure:"page_size"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
	MaxCellWidth int    `mapstructure:"max_cell_width"`
	MinCellWidth int    `mapstructure:"min_cell_width"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File receives logs while the TUI owns the terminal
	File string `mapstructure:"file"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type StorageConfig struct {
	// PreferencesPath is the SQLite file holding column preferences
	PreferencesPath string `mapstructure:"preferences_path"`
	// SavedFiltersDir holds saved_filters.yaml
	SavedFiltersDir string `mapstructure:"saved_filters_dir"`
}

type FeaturesConfig struct {
	Filters     bool `mapstructure:"filters"`
	BulkActions bool `mapstructure:"bulk_actions"`
	Pagination  bool `mapstructure:"pagination"`
	Export      bool `mapstructure:"export"`
}

// ViewConfig configures one list view, keyed by its module name
type ViewConfig struct {
	Title        string               `mapstructure:"title"`
	Source       models.SourceConfig  `mapstructure:"source"`
	Columns      []models.ColumnSpec  `mapstructure:"columns"`
	Filters      []models.FilterField `mapstructure:"filters"`
	QuickFilters []models.QuickFilter `mapstructure:"quick_filters"`
	// SearchColumns are searched in SQL when Pushdown is set and they list
	// every column the query returns
	SearchColumns []string `mapstructure:"search_columns"`
	Pushdown      bool     `mapstructure:"pushdown"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	dir, _ := GetConfigPath()
	return &Config{
		General: GeneralConfig{
			DefaultModule: "default",
			PageSize:      50,
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
			MaxCellWidth: 50,
			MinCellWidth: 10,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, AppName+".log"),
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			PreferencesPath: filepath.Join(dir, "preferences.db"),
			SavedFiltersDir: dir,
		},
		Features: FeaturesConfig{
			Filters:     true,
			BulkActions: true,
			Pagination:  true,
			Export:      true,
		},
		Views: map[string]ViewConfig{},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("general.default_module", d.General.DefaultModule)
	v.SetDefault("general.current_user", d.General.CurrentUser)
	v.SetDefault("general.page_size", d.General.PageSize)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.max_cell_width", d.UI.MaxCellWidth)
	v.SetDefault("ui.min_cell_width", d.UI.MinCellWidth)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("storage.preferences_path", d.Storage.PreferencesPath)
	v.SetDefault("storage.saved_filters_dir", d.Storage.SavedFiltersDir)
	v.SetDefault("features.filters", d.Features.Filters)
	v.SetDefault("features.bulk_actions", d.Features.BulkActions)
	v.SetDefault("features.pagination", d.Features.Pagination)
	v.SetDefault("features.export", d.Features.Export)
}

// Load reads configuration. An empty path searches the user config
// directory, "." and "./config" for config.yaml; a missing file is fine.
// A .env file in the working directory is loaded first so LAZYLIST_*
// variables can override any key.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Add config paths in priority order
		if dir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		filterOptionHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Views == nil {
		cfg.Views = map[string]ViewConfig{}
	}

	return &cfg, nil
}

// filterOptionHook lets filter options be written as plain strings
func filterOptionHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(models.FilterOption{}) {
		return data, nil
	}
	s, _ := data.(string)
	return models.FilterOption{Value: s, Label: s}, nil
}

// View returns the configuration for a module
func (c *Config) View(module string) (ViewConfig, error) {
	view, ok := c.Views[strings.ToLower(module)]
	if !ok {
		return ViewConfig{}, fmt.Errorf("%w: %s", ErrUnknownView, module)
	}
	return view, nil
}

// Modules lists configured view names in order
func (c *Config) Modules() []string {
	modules := make([]string, 0, len(c.Views))
	for name := range c.Views {
		modules = append(modules, name)
	}
	sort.Strings(modules)
	return modules
}

// ColumnsFor converts a view's column specs, inferring them from the
// loaded column names when the view lists none
func (v ViewConfig) ColumnsFor(loaded []string) []models.Column {
	if len(v.Columns) == 0 {
		cols := make([]models.Column, len(loaded))
		for i, name := range loaded {
			cols[i] = models.Column{Key: name, Label: name}
		}
		return cols
	}

	cols := make([]models.Column, len(v.Columns))
	for i, spec := range v.Columns {
		cols[i] = spec.Column()
	}
	return cols
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
