package source

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// pgPassEntry is one line of a .pgpass file
type pgPassEntry struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// pgPassPath honours PGPASSFILE before ~/.pgpass
func pgPassPath() (string, error) {
	if p := os.Getenv("PGPASSFILE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pgpass"), nil
}

// readPgPass parses a .pgpass file. A missing file yields no entries.
func readPgPass(path string) ([]pgPassEntry, error) {
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		if info.Mode().Perm()&0077 != 0 {
			return nil, fmt.Errorf("%s has insecure permissions %v, must be 0600", path, info.Mode().Perm())
		}
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var entries []pgPassEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if entry, ok := parsePgPassLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries, scanner.Err()
}

// parsePgPassLine splits hostname:port:database:username:password,
// honouring \: and \\ escapes
func parsePgPassLine(line string) (pgPassEntry, bool) {
	parts := make([]string, 0, 5)
	var current strings.Builder
	escaped := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case escaped:
			current.WriteByte(ch)
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == ':':
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	parts = append(parts, current.String())

	if len(parts) != 5 {
		return pgPassEntry{}, false
	}
	if parts[1] != "*" {
		if p, err := strconv.Atoi(parts[1]); err != nil || p < 1 || p > 65535 {
			return pgPassEntry{}, false
		}
	}
	return pgPassEntry{
		Host:     parts[0],
		Port:     parts[1],
		Database: parts[2],
		User:     parts[3],
		Password: parts[4],
	}, true
}

// lookupPgPass returns the first matching .pgpass password, or ""
func lookupPgPass(path string, c models.ConnectionConfig) string {
	entries, err := readPgPass(path)
	if err != nil {
		return ""
	}

	port := strconv.Itoa(c.Port)
	for _, e := range entries {
		if wildcard(e.Host, c.Host) && wildcard(e.Port, port) &&
			wildcard(e.Database, c.Database) && wildcard(e.User, c.User) {
			return e.Password
		}
	}
	return ""
}

func wildcard(pattern, value string) bool {
	return pattern == "*" || pattern == value
}

// withPostgresEnv fills unset connection fields from the PG* environment
// variables, then applies libpq's defaults
func withPostgresEnv(c models.ConnectionConfig) models.ConnectionConfig {
	if c.Host == "" {
		c.Host = os.Getenv("PGHOST")
	}
	if c.Port == 0 {
		if p, err := strconv.Atoi(os.Getenv("PGPORT")); err == nil && p > 0 && p <= 65535 {
			c.Port = p
		}
	}
	if c.Database == "" {
		c.Database = os.Getenv("PGDATABASE")
	}
	if c.User == "" {
		c.User = os.Getenv("PGUSER")
	}
	if c.Password == "" {
		c.Password = os.Getenv("PGPASSWORD")
	}
	if c.SSLMode == "" {
		c.SSLMode = os.Getenv("PGSSLMODE")
	}

	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.User == "" {
		c.User = os.Getenv("USER")
	}
	if c.Database == "" {
		c.Database = c.User
	}
	if c.SSLMode == "" {
		c.SSLMode = "prefer"
	}
	return c
}
