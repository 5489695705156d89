// Package config reads runtime settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nonsonwune/counselling_db/cache"
	"github.com/nonsonwune/counselling_db/importer"
	"github.com/nonsonwune/counselling_db/models"
	"github.com/nonsonwune/counselling_db/search"
)

const (
	ErrCodeInvalid  = "config_invalid"
	ErrCodeEnvFile  = "config_env_file"
	DefaultDataDir  = "data"
	DefaultCacheDB  = "counselling_cache.db"
	DefaultModel    = "gemini-1.5-flash"
	DefaultDBPort   = "5432"
	DefaultTimeout  = 30 * time.Second
	maxNumberedKeys = 4
)

// Error is returned for settings that are present but unusable.
type Error struct {
	Code string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Key != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Key, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	case e.Key != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Key)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code, or "" when err is not a *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// DB holds the postgres cache connection settings.
type DB struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type Config struct {
	// Exactly one of BaseURL and DataDir is used; BaseURL wins.
	BaseURL      string
	DataDir      string
	ManifestPath string
	CacheBust    bool
	HTTPTimeout  time.Duration

	Source    models.DataSource
	DedupKey  importer.KeyScope
	Selection search.SelectionMode

	// CacheDriver is "sqlite", "postgres" or "none".
	CacheDriver string
	CachePath   string
	DB          DB

	StateFile string

	GeminiKeys  []string
	GeminiModel string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DataDir:      DefaultDataDir,
		ManifestPath: importer.DefaultManifestPath,
		CacheBust:    true,
		HTTPTimeout:  DefaultTimeout,
		Source:       models.SourceState,
		DedupKey:     importer.KeyRankYear,
		Selection:    search.OptIn,
		CacheDriver:  "sqlite",
		CachePath:    DefaultCacheDB,
		DB:           DB{Host: "localhost", Port: DefaultDBPort, SSLMode: "disable"},
		StateFile:    search.DefaultStateFile,
		GeminiModel:  DefaultModel,
	}
}

// Load reads the given .env files (".env" when none are named) and then the
// process environment. Missing .env files are not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, &Error{Code: ErrCodeEnvFile, Key: f, Err: err}
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	cfg := Default()

	if v := get("DATA_BASE_URL"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := get("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := get("MANIFEST_PATH"); v != "" {
		cfg.ManifestPath = v
	}
	if v := get("CACHE_BUST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "CACHE_BUST", Err: err}
		}
		cfg.CacheBust = b
	}
	if v := get("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			if err == nil {
				err = fmt.Errorf("must be positive, got %s", v)
			}
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "HTTP_TIMEOUT", Err: err}
		}
		cfg.HTTPTimeout = d
	}
	if v := get("DATA_SOURCE"); v != "" {
		src, err := models.ParseDataSource(v)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "DATA_SOURCE", Err: err}
		}
		cfg.Source = src
	}
	if v := get("DEDUP_KEY"); v != "" {
		k, err := importer.ParseKeyScope(v)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "DEDUP_KEY", Err: err}
		}
		cfg.DedupKey = k
	}
	if v := get("EMPTY_SELECTION"); v != "" {
		m, err := search.ParseSelectionMode(v)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "EMPTY_SELECTION", Err: err}
		}
		cfg.Selection = m
	}
	if v := strings.ToLower(get("CACHE_DRIVER")); v != "" {
		switch v {
		case "sqlite", "postgres", "none":
			cfg.CacheDriver = v
		default:
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "CACHE_DRIVER",
				Err: fmt.Errorf("unknown driver %q (want sqlite, postgres or none)", v)}
		}
	}
	if v := get("CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}

	if v := get("DB_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := get("DB_PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Key: "DB_PORT", Err: err}
		}
		cfg.DB.Port = v
	}
	cfg.DB.User = get("DB_USER")
	cfg.DB.Password = get("DB_PASSWORD")
	cfg.DB.Name = get("DB_NAME")
	if v := get("DB_SSLMODE"); v != "" {
		cfg.DB.SSLMode = v
	}
	if cfg.CacheDriver == "postgres" && cfg.DB.Name == "" {
		return Config{}, &Error{Code: ErrCodeInvalid, Key: "DB_NAME",
			Err: errors.New("required when CACHE_DRIVER=postgres")}
	}

	if v := get("STATE_FILE"); v != "" {
		cfg.StateFile = v
	}

	cfg.GeminiKeys = geminiKeys(get)
	if v := get("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}

	return cfg, nil
}

// geminiKeys collects GEMINI_API_KEY and GEMINI_API_KEY_1.._4 without
// duplicates, in that order.
func geminiKeys(get func(string) string) []string {
	var keys []string
	seen := map[string]bool{}
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	add(get("GEMINI_API_KEY"))
	for i := 1; i <= maxNumberedKeys; i++ {
		add(get(fmt.Sprintf("GEMINI_API_KEY_%d", i)))
	}
	return keys
}

// CacheDSN is the data source name for the configured cache driver.
func (c Config) CacheDSN() string {
	if c.CacheDriver == "postgres" {
		return cache.PostgresDSN(c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
	}
	return c.CachePath
}
