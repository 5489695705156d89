package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/nonsonwune/counselling_db/models"
)

// ErrNoMeritData is returned when the manifest lists no merit file for the
// requested year and category, or the table is empty.
var ErrNoMeritData = errors.New("no merit data")

type meritEntry struct {
	rank      int
	stateRank int
}

// MeritTable maps exam ranks to state merit ranks for one year/category.
type MeritTable struct {
	Year     string
	Category models.SourceCategory
	entries  []meritEntry // sorted by rank
}

// ParseMeritTable reads either {"<rank>": stateRank, ...} or
// [{"rank": r, "stateRank": s}, ...].
func ParseMeritTable(data []byte, year string, category models.SourceCategory) (*MeritTable, error) {
	data = bytes.TrimSpace(data)
	t := &MeritTable{Year: year, Category: category}

	switch {
	case len(data) > 0 && data[0] == '{':
		var obj map[string]models.FlexInt
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("parse merit table: %w", err)
		}
		for k, v := range obj {
			rank, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil || rank <= 0 {
				continue
			}
			t.entries = append(t.entries, meritEntry{rank: rank, stateRank: int(v)})
		}
	case len(data) > 0 && data[0] == '[':
		var rows []struct {
			Rank      models.FlexInt `json:"rank"`
			StateRank models.FlexInt `json:"stateRank"`
		}
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("parse merit table: %w", err)
		}
		for _, r := range rows {
			if r.Rank <= 0 {
				continue
			}
			t.entries = append(t.entries, meritEntry{rank: int(r.Rank), stateRank: int(r.StateRank)})
		}
	default:
		return nil, fmt.Errorf("parse merit table: unexpected content")
	}

	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].rank < t.entries[j].rank })
	return t, nil
}

// Len is the number of ranks in the table.
func (t *MeritTable) Len() int {
	return len(t.entries)
}

// Lookup returns the state rank for an exam rank. Without an exact entry the
// nearest rank by absolute difference is used, the lower one on a tie, and
// the result is marked Approximate.
func (t *MeritTable) Lookup(rank int) (models.MeritRank, error) {
	if t == nil || len(t.entries) == 0 {
		return models.MeritRank{}, ErrNoMeritData
	}
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].rank >= rank })

	var best meritEntry
	switch {
	case i < len(t.entries) && t.entries[i].rank == rank:
		best = t.entries[i]
	case i == 0:
		best = t.entries[0]
	case i == len(t.entries):
		best = t.entries[i-1]
	default:
		below, above := t.entries[i-1], t.entries[i]
		if rank-below.rank <= above.rank-rank {
			best = below
		} else {
			best = above
		}
	}

	return models.MeritRank{
		ExamRank:    rank,
		StateRank:   best.stateRank,
		Year:        t.Year,
		Category:    t.Category,
		MatchedRank: best.rank,
		Approximate: best.rank != rank,
	}, nil
}

// LoadMeritTable finds the merit file of (year, category) in the manifest and
// parses it.
func LoadMeritTable(ctx context.Context, f Fetcher, manifestPath, year string, category models.SourceCategory, logger *log.Logger) (*MeritTable, error) {
	logger = loggerOrDefault(logger)
	if manifestPath == "" {
		manifestPath = DefaultManifestPath
	}
	manifest, err := ReadManifest(ctx, f, manifestPath, logger)
	if err != nil {
		return nil, err
	}
	for _, d := range manifest.MeritFiles {
		if d.Year != year || d.Category != category {
			continue
		}
		data, err := f.Fetch(ctx, d.Path)
		if err != nil {
			return nil, fmt.Errorf("fetch merit file %s: %w", d.Path, err)
		}
		t, err := ParseMeritTable(data, year, category)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Path, err)
		}
		if t.Len() == 0 {
			return nil, fmt.Errorf("%s: %w", d.Path, ErrNoMeritData)
		}
		logger.Printf("Loaded %d merit ranks from %s", t.Len(), d.Path)
		return t, nil
	}
	return nil, fmt.Errorf("%w for %s %s", ErrNoMeritData, category, year)
}
