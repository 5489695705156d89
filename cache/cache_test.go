package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	loaded := time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)

	if _, ok, err := s.Get(ctx, "desireDataCache_state"); err != nil || ok {
		t.Fatalf("Get on empty store = %v, %v", ok, err)
	}

	if err := s.Put(ctx, "desireDataCache_state", Entry{Payload: []byte(`[1]`), LoadedAt: loaded}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	e, ok, err := s.Get(ctx, "desireDataCache_state")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(e.Payload) != `[1]` || !e.LoadedAt.Equal(loaded) {
		t.Errorf("entry = %q at %v", e.Payload, e.LoadedAt)
	}

	later := loaded.Add(time.Hour)
	if err := s.Put(ctx, "desireDataCache_state", Entry{Payload: []byte(`[2]`), LoadedAt: later}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	e, _, _ = s.Get(ctx, "desireDataCache_state")
	if string(e.Payload) != `[2]` || !e.LoadedAt.Equal(later) {
		t.Errorf("overwritten entry = %q at %v", e.Payload, e.LoadedAt)
	}

	if _, ok, _ := s.Get(ctx, "desireDataCache_aiq"); ok {
		t.Error("keys are not independent")
	}

	if err := s.Delete(ctx, "desireDataCache_state"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "desireDataCache_state"); ok {
		t.Error("entry survived Delete")
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of a missing key: %v", err)
	}
}

func TestSQLStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "k", Entry{Payload: []byte("v"), LoadedAt: time.UnixMilli(1000)}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	e, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(e.Payload) != "v" {
		t.Errorf("after reopen Get = %q, %v, %v", e.Payload, ok, err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Error("expected error for an unsupported driver")
	}
}

func TestPostgresDSN(t *testing.T) {
	got := PostgresDSN("db", "5432", "app", "secret", "counselling", "")
	want := "host=db port=5432 user=app password=secret dbname=counselling sslmode=disable"
	if got != want {
		t.Errorf("PostgresDSN = %q, want %q", got, want)
	}
	if got := PostgresDSN("db", "5432", "app", "", "c", "require"); got != "host=db port=5432 user=app password= dbname=c sslmode=require" {
		t.Errorf("PostgresDSN with sslmode = %q", got)
	}
}
