// Package cache stores the canonical record set of a data source between
// runs. Entries are opaque payloads stamped with their load time; deciding
// whether an entry is still fresh is up to the caller.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/nonsonwune/counselling_db/migrations"
)

// Entry is one cached value.
type Entry struct {
	Payload  []byte
	LoadedAt time.Time
}

// Store is an opaque key-value store.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SQLStore keeps entries in the record_cache table of a sqlite or postgres database.
type SQLStore struct {
	db      *sql.DB
	dialect migrations.Dialect
}

// Open connects to the cache database and makes sure the schema exists.
// driver is "sqlite" (dsn is a file path) or "postgres" (dsn is a lib/pq
// connection string).
func Open(driver, dsn string) (*SQLStore, error) {
	dialect, err := migrations.ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", dialect, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s cache: %w", dialect, err)
	}
	s, err := New(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database.
func New(db *sql.DB, dialect migrations.Dialect) (*SQLStore, error) {
	if dialect == migrations.SQLite {
		// sqlite allows one writer; keep database/sql from opening more.
		db.SetMaxOpenConns(1)
	}
	if err := migrations.InitSchema(db, dialect); err != nil {
		return nil, err
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	query := fmt.Sprintf(`SELECT payload, loaded_at FROM record_cache WHERE cache_key = %s`,
		s.dialect.Placeholder(1))

	var (
		payload string
		millis  int64
	)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload, &millis)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cache %q: %w", key, err)
	}
	return Entry{Payload: []byte(payload), LoadedAt: time.UnixMilli(millis)}, true, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, e Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO record_cache (cache_key, payload, loaded_at)
		VALUES (%s, %s, %s)
		ON CONFLICT (cache_key)
		DO UPDATE SET payload = excluded.payload, loaded_at = excluded.loaded_at`,
		s.dialect.Placeholder(1), s.dialect.Placeholder(2), s.dialect.Placeholder(3))

	if _, err := s.db.ExecContext(ctx, query, key, string(e.Payload), e.LoadedAt.UnixMilli()); err != nil {
		return fmt.Errorf("write cache %q: %w", key, err)
	}
	return nil
}

// Delete drops one entry; a missing key is not an error.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM record_cache WHERE cache_key = %s`, s.dialect.Placeholder(1))
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete cache %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// PostgresDSN builds a lib/pq connection string from its parts.
func PostgresDSN(host, port, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}
