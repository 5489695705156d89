package migrations

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"sqlite", SQLite, false},
		{" SQLite3 ", SQLite, false},
		{"postgres", Postgres, false},
		{"postgresql", Postgres, false},
		{"pq", Postgres, false},
		{"mysql", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDialect(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	if got := Postgres.Placeholder(3); got != "$3" {
		t.Errorf("Postgres placeholder = %q", got)
	}
	if got := SQLite.Placeholder(3); got != "?" {
		t.Errorf("SQLite placeholder = %q", got)
	}
}

func TestInitSchemaSQLite(t *testing.T) {
	db, err := sql.Open(SQLite.DriverName(), filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// Running twice must be harmless.
	for i := 0; i < 2; i++ {
		if err := InitSchema(db, SQLite); err != nil {
			t.Fatalf("InitSchema run %d: %v", i+1, err)
		}
	}
	ok, err := tableExists(db, SQLite, "record_cache")
	if err != nil || !ok {
		t.Errorf("record_cache exists = %v, %v", ok, err)
	}
	ok, err = tableExists(db, SQLite, "nope")
	if err != nil || ok {
		t.Errorf("nope exists = %v, %v", ok, err)
	}
}
