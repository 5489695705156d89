package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/nonsonwune/counselling_db/cache"
)

var testNow = time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)

var discard = log.New(io.Discard, "", 0)

// memFetcher serves files from memory. Names in fail return an error; hook,
// when set, runs before every fetch and may replace its result.
type memFetcher struct {
	mu    sync.Mutex
	files map[string]string
	fail  map[string]bool
	calls map[string]int
	hook  func(ctx context.Context, name string) error
}

func newMemFetcher(files map[string]string) *memFetcher {
	return &memFetcher{files: files, fail: map[string]bool{}, calls: map[string]int{}}
}

func (f *memFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	f.calls[name]++
	hook := f.hook
	failing := f.fail[name]
	data, ok := f.files[name]
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, name); err != nil {
			return nil, err
		}
	}
	if failing {
		return nil, fmt.Errorf("fetch %s: simulated failure", name)
	}
	if !ok {
		return nil, fmt.Errorf("fetch %s: not found", name)
	}
	return []byte(data), nil
}

func (f *memFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// memStore is an in-memory cache.Store.
type memStore struct {
	mu      sync.Mutex
	entries map[string]cache.Entry
	getErr  error
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]cache.Entry{}}
}

func (s *memStore) Get(ctx context.Context, key string) (cache.Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return cache.Entry{}, false, s.getErr
	}
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *memStore) Put(ctx context.Context, key string, e cache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[key] = e
	return nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memStore) Close() error { return nil }

const testManifest = `{
	"counsellingFiles": [
		{"path": "data/24/cq_r1.json", "year": "24", "category": "CQ", "phase": "R1"},
		{"path": "data/24/cq_stray.json", "year": "24", "category": "CQ", "phase": "STRAY"},
		{"path": "data/24/mq_r1.json", "year": "24", "category": "mq", "phase": "R1"},
		{"path": "data/24/cq_mopup.json", "year": "24", "category": "CQ", "phase": "MOPUP"},
		{"path": "data/23/cq_r1.json", "year": "23", "category": "CQ", "phase": "R1"},
		{"path": "data/24/bad.json", "year": "24", "category": "XX"}
	],
	"aiqFiles": [
		{"path": "data/aiq/24/aiq_round_1.json", "year": "24", "category": "AIQ"}
	],
	"meritFiles": [
		{"path": "data/merit/24_cq.json", "year": " 24 ", "category": "CQ"}
	]
}`

func testFiles() map[string]string {
	return map[string]string{
		"data_manifest.json": testManifest,
		"data/24/cq_r1.json": `[
			{"rank": 19566, "college": "A(001) - COLLEGE A", "course": "ENT(17)", "details": "NS-OC-GEN-R1"},
			{"rank": 500, "college": "A(001) - COLLEGE A", "course": "ENT(17)", "details": "NS-SC-FEM-R1"}
		]`,
		"data/24/cq_stray.json": `[
			{"rank": 19566, "college": "B(002) - COLLEGE B", "course": "ENT(17)", "details": "NS-OC-GEN-STRAY"}
		]`,
		"data/24/mq_r1.json": `[
			{"rank": 80000, "college": "C(003) - COLLEGE C", "course": "PM(4)", "details": "MQ1-MIN-R1"}
		]`,
		"data/24/cq_mopup.json": `[
			{"rank": 19566, "college": "D(004) - COLLEGE D", "course": "ENT(17)", "details": "NS-OC-GEN-MOPUP"}
		]`,
		"data/23/cq_r1.json": `[
			{"rank": 19566, "college": "E(005) - COLLEGE E", "course": "ENT(17)", "details": "NS-OC-GEN-R1"}
		]`,
		"data/aiq/24/aiq_round_1.json": `[
			{"Rank": 42, "Allotted Quota": "Open Seat Quota", "Allotted Institute": "AIIMS", "Course": "MD (Medicine)", "Allotted Category": "Open", "Candidate Category": "Open", "Remarks": ""}
		]`,
		"data/merit/24_cq.json": `{"100": 12, "200": 25, "300": 31}`,
	}
}
