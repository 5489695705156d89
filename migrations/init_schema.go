package migrations

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect is the SQL flavour of the cache database.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts the CACHE_DRIVER spellings.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported cache driver %q", s)
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS record_cache (
		cache_key TEXT PRIMARY KEY,
		payload   TEXT NOT NULL,
		loaded_at BIGINT NOT NULL
	)`,
}

// InitSchema creates the cache tables if needed and verifies they exist.
func InitSchema(db *sql.DB, d Dialect) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tables := []string{"record_cache"}
	for _, table := range tables {
		exists, err := tableExists(db, d, table)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("required table %s does not exist", table)
		}
	}
	return nil
}

func tableExists(db *sql.DB, d Dialect, table string) (bool, error) {
	var query string
	switch d {
	case Postgres:
		query = `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = current_schema()
				AND table_name = $1
			)`
	default:
		query = `SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?)`
	}

	var exists bool
	if err := db.QueryRow(query, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return exists, nil
}
