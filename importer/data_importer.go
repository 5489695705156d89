package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nonsonwune/counselling_db/cache"
	"github.com/nonsonwune/counselling_db/models"
)

const (
	DefaultManifestPath = "data_manifest.json"
	DefaultCacheTTL     = 24 * time.Hour
	cacheKeyPrefix      = "desireDataCache_"
)

// ErrSuperseded is returned by a load cycle that finished after a newer load
// was started. Its records are discarded.
var ErrSuperseded = errors.New("load superseded by a newer request")

// Snapshot is the published, deduplicated record set of one data source.
// It is never mutated after publication.
type Snapshot struct {
	CycleID    uuid.UUID
	Generation uint64
	Source     models.DataSource
	Records    []models.CandidateRecord
	LoadedAt   time.Time
	FromCache  bool
	// Skipped lists files that failed to fetch or parse.
	Skipped []string
}

// LoadCycle owns the record buffer of one load. Rows are appended as files
// are mapped; nothing outside the cycle sees the buffer until Finish.
type LoadCycle struct {
	ID         uuid.UUID
	Generation uint64
	Source     models.DataSource

	records []models.CandidateRecord
	skipped []string
	logger  *log.Logger
}

func NewLoadCycle(generation uint64, src models.DataSource, logger *log.Logger) *LoadCycle {
	return &LoadCycle{
		ID:         uuid.New(),
		Generation: generation,
		Source:     src,
		logger:     loggerOrDefault(logger),
	}
}

// Append maps one raw row into the buffer.
func (c *LoadCycle) Append(raw RawRecord) error {
	rec, err := ToCandidate(raw)
	if err != nil {
		return err
	}
	c.records = append(c.records, rec)
	return nil
}

// AppendFile decodes a whole file and appends every mappable row. Rows that
// cannot be mapped are counted and logged, not fatal.
func (c *LoadCycle) AppendFile(data []byte, desc models.FileDescriptor) (int, error) {
	rows, err := DecodeFile(data, desc)
	if err != nil {
		return 0, err
	}
	added, dropped := 0, 0
	for _, row := range rows {
		if err := c.Append(row); err != nil {
			dropped++
			continue
		}
		added++
	}
	if dropped > 0 {
		c.logger.Printf("Warning: %s: dropped %d rows without a usable rank", desc.Path, dropped)
	}
	return added, nil
}

// Skip records a file that contributed nothing.
func (c *LoadCycle) Skip(path string) {
	c.skipped = append(c.skipped, path)
}

// Finish deduplicates the buffer and hands it over as a Snapshot.
func (c *LoadCycle) Finish(scope KeyScope, now time.Time) *Snapshot {
	unique := Deduplicate(c.records, scope)
	c.logger.Printf("Loaded %d unique candidates from %d rows (cycle %s)", len(unique), len(c.records), c.ID)
	c.records = nil
	return &Snapshot{
		CycleID:    c.ID,
		Generation: c.Generation,
		Source:     c.Source,
		Records:    unique,
		LoadedAt:   now,
		Skipped:    append([]string(nil), c.skipped...),
	}
}

// LoadOptions tune a single Load call.
type LoadOptions struct {
	// Refresh skips the cache and always fetches.
	Refresh bool
}

// Loader runs load cycles and publishes their snapshots. Only the newest
// requested cycle may publish: starting a load cancels the one in flight, and
// a cycle that completes after being superseded returns ErrSuperseded.
type Loader struct {
	Fetcher      Fetcher
	Cache        cache.Store
	ManifestPath string
	KeyScope     KeyScope
	CacheTTL     time.Duration
	Logger       *log.Logger
	Now          func() time.Time

	generation atomic.Uint64

	mu       sync.Mutex
	cancel   context.CancelFunc
	inFlight uint64
	current  *Snapshot
}

func NewLoader(f Fetcher, store cache.Store, scope KeyScope, logger *log.Logger) *Loader {
	return &Loader{
		Fetcher:      f,
		Cache:        store,
		ManifestPath: DefaultManifestPath,
		KeyScope:     scope,
		CacheTTL:     DefaultCacheTTL,
		Logger:       loggerOrDefault(logger),
		Now:          time.Now,
	}
}

// Current returns the last published snapshot, or nil.
func (l *Loader) Current() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Load builds the record set of src and publishes it.
func (l *Loader) Load(ctx context.Context, src models.DataSource, opts LoadOptions) (*Snapshot, error) {
	ctx, gen := l.begin(ctx)
	defer l.end(gen)

	logger := loggerOrDefault(l.Logger)
	cycle := NewLoadCycle(gen, src, logger)

	if opts.Refresh {
		l.drop(ctx, src)
	} else if snap, ok := l.fromCache(ctx, cycle); ok {
		if err := l.publish(snap); err != nil {
			return nil, err
		}
		return snap, nil
	}

	manifest, err := ReadManifest(ctx, l.Fetcher, l.manifestPath(), logger)
	if err != nil {
		if l.superseded(gen) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	// One file at a time, in manifest order: equal-phase ties in
	// Deduplicate depend on this order.
	for _, fd := range manifest.FilesFor(src) {
		if ctx.Err() != nil {
			if l.superseded(gen) {
				return nil, ErrSuperseded
			}
			return nil, ctx.Err()
		}
		data, err := l.Fetcher.Fetch(ctx, fd.Path)
		if err != nil {
			logger.Printf("Could not load %s: %v", fd.Path, err)
			cycle.Skip(fd.Path)
			continue
		}
		if _, err := cycle.AppendFile(data, fd); err != nil {
			logger.Printf("Could not parse %s: %v", fd.Path, err)
			cycle.Skip(fd.Path)
		}
	}

	snap := cycle.Finish(l.KeyScope, l.now())
	if err := l.publish(snap); err != nil {
		return nil, err
	}
	l.store(ctx, snap)
	return snap, nil
}

func (l *Loader) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	l.mu.Lock()
	defer l.mu.Unlock()
	gen := l.generation.Add(1)
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.inFlight = gen
	return ctx, gen
}

func (l *Loader) end(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight == gen && l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loader) superseded(gen uint64) bool {
	return l.generation.Load() != gen
}

func (l *Loader) publish(snap *Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.generation.Load() != snap.Generation {
		return ErrSuperseded
	}
	l.current = snap
	return nil
}

func cacheKey(src models.DataSource) string {
	return cacheKeyPrefix + string(src)
}

func (l *Loader) fromCache(ctx context.Context, cycle *LoadCycle) (*Snapshot, bool) {
	if l.Cache == nil {
		return nil, false
	}
	logger := loggerOrDefault(l.Logger)
	entry, ok, err := l.Cache.Get(ctx, cacheKey(cycle.Source))
	if err != nil {
		logger.Printf("Cache invalid, loading fresh data: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	ttl := l.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if l.now().Sub(entry.LoadedAt) >= ttl {
		return nil, false
	}
	var records []models.CandidateRecord
	if err := json.Unmarshal(entry.Payload, &records); err != nil {
		logger.Printf("Cache invalid, loading fresh data: %v", err)
		return nil, false
	}
	return &Snapshot{
		CycleID:    cycle.ID,
		Generation: cycle.Generation,
		Source:     cycle.Source,
		Records:    records,
		LoadedAt:   entry.LoadedAt,
		FromCache:  true,
	}, true
}

// drop removes the cached entry of src, so a refresh that fails part way
// never falls back to the data it was asked to replace.
func (l *Loader) drop(ctx context.Context, src models.DataSource) {
	if l.Cache == nil {
		return
	}
	if err := l.Cache.Delete(ctx, cacheKey(src)); err != nil {
		loggerOrDefault(l.Logger).Printf("Could not clear cached data: %v", err)
	}
}

func (l *Loader) store(ctx context.Context, snap *Snapshot) {
	if l.Cache == nil {
		return
	}
	logger := loggerOrDefault(l.Logger)
	payload, err := json.Marshal(snap.Records)
	if err != nil {
		logger.Printf("Could not cache data: %v", err)
		return
	}
	entry := cache.Entry{Payload: payload, LoadedAt: snap.LoadedAt}
	if err := l.Cache.Put(ctx, cacheKey(snap.Source), entry); err != nil {
		logger.Printf("Could not cache data: %v", err)
	}
}

func (l *Loader) manifestPath() string {
	if l.ManifestPath == "" {
		return DefaultManifestPath
	}
	return l.ManifestPath
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func loggerOrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}

// String summarises a snapshot for status lines.
func (s *Snapshot) String() string {
	origin := "network"
	if s.FromCache {
		origin = "cache"
	}
	return fmt.Sprintf("%d records for %s from %s (loaded %s)",
		len(s.Records), s.Source, origin, s.LoadedAt.Format(time.RFC3339))
}
