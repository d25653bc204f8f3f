package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceKind identifies where rows are loaded from
type SourceKind string

const (
	SourceCSV      SourceKind = "csv"
	SourceJSON     SourceKind = "json"
	SourceYAML     SourceKind = "yaml"
	SourcePostgres SourceKind = "postgres"
	SourceMySQL    SourceKind = "mysql"
	SourceSQLite   SourceKind = "sqlite"
)

// ConnectionConfig represents a database connection configuration
type ConnectionConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	SSLMode  string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// SourceConfig describes one row source
type SourceConfig struct {
	Kind SourceKind `mapstructure:"kind" yaml:"kind"`
	// Path is the data file, or the database file for sqlite
	Path       string           `mapstructure:"path" yaml:"path"`
	Connection ConnectionConfig `mapstructure:"connection" yaml:"connection"`
	// Table or Query selects rows from SQL sources; Query wins when both are set
	Table string `mapstructure:"table" yaml:"table"`
	Query string `mapstructure:"query" yaml:"query"`
	Limit int    `mapstructure:"limit" yaml:"limit"`
	// IDColumn is copied into the id field of rows that lack one
	IDColumn string `mapstructure:"id_column" yaml:"id_column"`
}

// ResolveKind fills Kind from the file extension when unset
func (s SourceConfig) ResolveKind() (SourceKind, error) {
	if s.Kind != "" {
		return SourceKind(strings.ToLower(string(s.Kind))), nil
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".csv":
		return SourceCSV, nil
	case ".json":
		return SourceJSON, nil
	case ".yaml", ".yml":
		return SourceYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceSQLite, nil
	case "":
		return "", fmt.Errorf("source kind is not set and path has no extension")
	default:
		return "", fmt.Errorf("cannot infer source kind from %q", s.Path)
	}
}

// String describes the source for titles and logs, never including passwords
func (s SourceConfig) String() string {
	switch s.Kind {
	case SourcePostgres, SourceMySQL:
		target := s.Table
		if s.Query != "" {
			target = "query"
		}
		return fmt.Sprintf("%s://%s@%s:%d/%s (%s)", s.Kind, s.Connection.User, s.Connection.Host,
			s.Connection.Port, s.Connection.Database, target)
	default:
		return s.Path
	}
}
