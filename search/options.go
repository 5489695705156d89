package search

import (
	"sort"
	"strings"

	"github.com/nonsonwune/counselling_db/models"
)

// Options are the distinct values of each selectable group in a record set.
type Options struct {
	Years      []string
	Quotas     []string
	Colleges   []string
	Courses    []string
	Categories []string
}

var quotaDescriptions = map[string]string{
	"NS":  "NS (Regular)",
	"S":   "S (In-Service)",
	"MQ1": "MQ1 (B Category)",
	"MQ2": "MQ2 (C Category)",
	"MQ3": "MQ3 (NRI/Institutional)",
}

// QuotaLabel is the display label of an admission type code.
func QuotaLabel(admissionType string) string {
	if d, ok := quotaDescriptions[admissionType]; ok {
		return d
	}
	return admissionType
}

// GenderLabel renders a gender the way the counselling lists do.
func GenderLabel(g models.Gender) string {
	if g == models.Female {
		return "FEM"
	}
	return "GEN"
}

// CollectOptions gathers the selectable values. Years sort newest first,
// colleges alphabetically, courses by course code and quotas with NS first.
func CollectOptions(records []models.CandidateRecord) Options {
	years := map[string]bool{}
	quotas := map[string]bool{}
	colleges := map[string]bool{}
	courses := map[string]bool{}
	categories := map[string]bool{}
	for _, r := range records {
		years[r.Year] = true
		if r.AdmissionType != "" {
			quotas[r.AdmissionType] = true
		}
		colleges[r.College] = true
		courses[r.Course] = true
		if r.CandidateCategory != "" && !r.IsManagementQuota() && r.Source != models.AllIndia {
			categories[r.CandidateCategory] = true
		}
	}

	opts := Options{
		Years:      keys(years),
		Quotas:     keys(quotas),
		Colleges:   keys(colleges),
		Courses:    keys(courses),
		Categories: keys(categories),
	}
	sort.Slice(opts.Years, func(i, j int) bool {
		yi, yj := yearNumber(opts.Years[i]), yearNumber(opts.Years[j])
		if yi != yj {
			return yi > yj
		}
		return opts.Years[i] > opts.Years[j]
	})
	sort.Strings(opts.Colleges)
	sort.SliceStable(opts.Courses, func(i, j int) bool {
		ni, nj := models.CourseNumber(opts.Courses[i]), models.CourseNumber(opts.Courses[j])
		if ni != nj {
			return ni < nj
		}
		return opts.Courses[i] < opts.Courses[j]
	})
	sort.Slice(opts.Quotas, func(i, j int) bool {
		a, b := opts.Quotas[i], opts.Quotas[j]
		if a == "NS" || b == "NS" {
			return a == "NS" && b != "NS"
		}
		return a < b
	})
	sort.Strings(opts.Categories)
	return opts
}

// DefaultSpec selects every option, except that the quota group starts with
// only NS when NS exists.
func DefaultSpec(opts Options) Spec {
	s := NewSpec()
	s.Years = clone(opts.Years)
	s.Colleges = clone(opts.Colleges)
	s.Courses = clone(opts.Courses)
	s.Categories = clone(opts.Categories)
	s.Quotas = clone(opts.Quotas)
	for _, q := range opts.Quotas {
		if q == "NS" {
			s.Quotas = []string{"NS"}
			break
		}
	}
	return s
}

// FilterOptions returns the values containing term, case-insensitively.
func FilterOptions(values []string, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return clone(values)
	}
	var out []string
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), term) {
			out = append(out, v)
		}
	}
	return out
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
