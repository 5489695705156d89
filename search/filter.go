// Package search evaluates filter specifications against the canonical record
// set and keeps the user's last search between sessions.
package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nonsonwune/counselling_db/models"
)

// PageSize bounds the number of records returned for display.
const PageSize = 200

// SelectionMode decides what an empty multi-select group means.
type SelectionMode int

const (
	// OptIn: an empty group matches nothing. The menu always pre-selects
	// every option, so an empty group is an explicit "none".
	OptIn SelectionMode = iota
	// EmptyMeansAll: an empty group applies no filter.
	EmptyMeansAll
)

func (m SelectionMode) String() string {
	if m == EmptyMeansAll {
		return "all"
	}
	return "none"
}

// ParseSelectionMode accepts "none"/"opt-in" and "all".
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "opt-in", "optin":
		return OptIn, nil
	case "all", "empty-means-all":
		return EmptyMeansAll, nil
	}
	return OptIn, fmt.Errorf("unknown selection mode %q (want none or all)", s)
}

type SortKey string

const (
	SortRank    SortKey = "rank"
	SortYear    SortKey = "year"
	SortCollege SortKey = "college"
)

func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortRank:
		return SortRank, nil
	case SortYear:
		return SortYear, nil
	case SortCollege:
		return SortCollege, nil
	}
	return SortRank, fmt.Errorf("unknown sort key %q (want rank, year or college)", s)
}

// Include toggles are on by default. Turning one off hides the records that
// carry the flag (or, for NonLocal, the records that do not).
type Include struct {
	PH       bool `yaml:"ph"`
	MIN      bool `yaml:"min"`
	MRC      bool `yaml:"mrc"`
	NonLocal bool `yaml:"nonLocal"`
}

// Only narrows the result to records carrying the flag. Only toggles last
// for a single query; see ResetTransient.
type Only struct {
	PH    bool
	MIN   bool
	MRC   bool
	Local bool
}

// Spec holds every criterion of a search.
//
// Zero MinRank or MaxRank leaves that end of the range open. Years, Quotas,
// Colleges, Courses and Categories are interpreted per Selection. Gender is
// only filtered when exactly one of Male and Female is set.
type Spec struct {
	MinRank int
	MaxRank int

	Years      []string
	Quotas     []string
	Colleges   []string
	Courses    []string
	Categories []string
	Selection  SelectionMode

	Include Include
	Only    Only

	Male   bool
	Female bool

	Sort SortKey
	Desc bool
}

// NewSpec returns a Spec with every default applied and empty selections.
func NewSpec() Spec {
	return Spec{
		Include: Include{PH: true, MIN: true, MRC: true, NonLocal: true},
		Male:    true,
		Female:  true,
		Sort:    SortRank,
	}
}

// ResetTransient clears the single-query Only toggles.
func (s *Spec) ResetTransient() {
	s.Only = Only{}
}

func (s Spec) selected(group []string, value string) bool {
	if len(group) == 0 {
		return s.Selection == EmptyMeansAll
	}
	for _, v := range group {
		if v == value {
			return true
		}
	}
	return false
}

// Matches reports whether r satisfies s. Management-quota records pass the
// category, gender, status and local checks unconditionally; all-India
// records carry no state category, gender or local data and pass those too.
func Matches(r models.CandidateRecord, s Spec) bool {
	if s.MinRank > 0 && r.Rank < s.MinRank {
		return false
	}
	if s.MaxRank > 0 && r.Rank > s.MaxRank {
		return false
	}
	if !s.selected(s.Years, r.Year) ||
		!s.selected(s.Quotas, r.AdmissionType) ||
		!s.selected(s.Colleges, r.College) ||
		!s.selected(s.Courses, r.Course) {
		return false
	}

	if r.IsManagementQuota() {
		return true
	}
	allIndia := r.Source == models.AllIndia

	if !allIndia && !s.selected(s.Categories, r.CandidateCategory) {
		return false
	}
	if !allIndia && s.Male != s.Female {
		if s.Male && r.Gender == models.Female {
			return false
		}
		if s.Female && r.Gender != models.Female {
			return false
		}
	}

	if !s.Include.PH && r.IsPH || s.Only.PH && !r.IsPH {
		return false
	}
	if allIndia {
		return true
	}
	if !s.Include.MIN && r.IsMIN || s.Only.MIN && !r.IsMIN {
		return false
	}
	if !s.Include.MRC && r.IsMRC || s.Only.MRC && !r.IsMRC {
		return false
	}
	if !s.Include.NonLocal && !r.IsLocal || s.Only.Local && !r.IsLocal {
		return false
	}
	return true
}

// Result is one page of matches plus the true match count.
type Result struct {
	Records []models.CandidateRecord
	Total   int
}

// Truncated reports whether more records matched than fit the page.
func (r Result) Truncated() bool {
	return r.Total > len(r.Records)
}

// Run filters records, sorts the survivors and returns the first page. The
// input slice is not modified.
func Run(records []models.CandidateRecord, s Spec) Result {
	var out []models.CandidateRecord
	for _, r := range records {
		if Matches(r, s) {
			out = append(out, r)
		}
	}
	Sort(out, s.Sort, s.Desc)

	res := Result{Total: len(out)}
	if len(out) > PageSize {
		out = out[:PageSize]
	}
	res.Records = out
	return res
}

// Sort orders records in place by key. Equal keys keep their input order.
func Sort(records []models.CandidateRecord, key SortKey, desc bool) {
	compare := func(a, b models.CandidateRecord) int {
		switch key {
		case SortYear:
			return yearNumber(a.Year) - yearNumber(b.Year)
		case SortCollege:
			return strings.Compare(strings.ToLower(a.College), strings.ToLower(b.College))
		default:
			return a.Rank - b.Rank
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		c := compare(records[i], records[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func yearNumber(y string) int {
	n, err := strconv.Atoi(strings.TrimSpace(y))
	if err != nil {
		return 0
	}
	return n
}
