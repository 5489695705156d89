package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nonsonwune/counselling_db/models"
)

// KeyScope decides which fields identify "the same candidate" when merging
// allotments across files.
type KeyScope int

const (
	// KeyRankYear treats a rank as one candidate per year, across quota
	// pools. A candidate who moved from a CQ seat to an MQ seat keeps only
	// the later allotment.
	KeyRankYear KeyScope = iota
	// KeyRankYearSource keeps one record per quota pool, so the same rank
	// may appear once under CQ and once under MQ.
	KeyRankYearSource
)

func (k KeyScope) String() string {
	switch k {
	case KeyRankYearSource:
		return "rank_year_category"
	default:
		return "rank_year"
	}
}

// ParseKeyScope reads the DEDUP_KEY setting.
func ParseKeyScope(s string) (KeyScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rank_year":
		return KeyRankYear, nil
	case "rank_year_category", "rank_year_source":
		return KeyRankYearSource, nil
	}
	return KeyRankYear, fmt.Errorf("unknown dedup key %q (want rank_year or rank_year_category)", s)
}

type identity struct {
	rank   int
	year   string
	source models.SourceCategory
}

func (k KeyScope) identity(r models.CandidateRecord) identity {
	id := identity{rank: r.Rank, year: r.Year}
	if k == KeyRankYearSource {
		id.source = r.Source
	}
	return id
}

// Deduplicate keeps exactly one record per identity: the one from the latest
// round by PhaseRank. Among equal rounds a record from a non-stray file beats
// one from a stray file; remaining ties keep the first record in processing
// order. The input slice is not modified.
func Deduplicate(records []models.CandidateRecord, scope KeyScope) []models.CandidateRecord {
	type ranked struct {
		rec   models.CandidateRecord
		phase int
		stray bool
	}
	all := make([]ranked, len(records))
	for i, r := range records {
		all[i] = ranked{rec: r, phase: PhaseRank(r.Phase), stray: r.IsStray()}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].phase != all[j].phase {
			return all[i].phase > all[j].phase
		}
		return !all[i].stray && all[j].stray
	})

	seen := make(map[identity]struct{}, len(all))
	out := make([]models.CandidateRecord, 0, len(all))
	for _, r := range all {
		id := scope.identity(r.rec)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r.rec)
	}
	return out
}
