package nlquery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nonsonwune/counselling_db/importer"
	"github.com/nonsonwune/counselling_db/models"
	"github.com/nonsonwune/counselling_db/nlquery/prompts"
	"github.com/nonsonwune/counselling_db/search"
)

var (
	yearRE      = regexp.MustCompile(`\b20(\d{2})\b`)
	betweenRE   = regexp.MustCompile(`(?:between|from)\s+(\d[\d,]*)\s+(?:and|to|-)\s+(\d[\d,]*)`)
	rangeRE     = regexp.MustCompile(`\b(\d[\d,]*)\s*(?:-|to)\s*(\d[\d,]*)\b`)
	underRE     = regexp.MustCompile(`(?:under|below|less than|upto|up to|within|before|<=?)\s*(\d[\d,]*)`)
	overRE      = regexp.MustCompile(`(?:over|above|more than|greater than|after|beyond|>=?)\s*(\d[\d,]*)`)
	singleRE    = regexp.MustCompile(`\brank\s+(\d[\d,]*)\b`)
	wordRE      = regexp.MustCompile(`[a-z0-9]+`)
	femaleRE    = regexp.MustCompile(`\b(female|females|women|woman|girls?|fem)\b`)
	maleRE      = regexp.MustCompile(`\b(male|males|men|man|boys?|gen)\b`)
	phRE        = regexp.MustCompile(`\b(ph|pwd|pho|handicapped|disabled|disability)\b`)
	minorityRE  = regexp.MustCompile(`\b(minority|min)\b`)
	mrcRE       = regexp.MustCompile(`\b(mrc|reciprocity)\b`)
	localRE     = regexp.MustCompile(`\blocal\b`)
	nonLocalRE  = regexp.MustCompile(`\bnon[\s-]?local\b`)
	managedRE   = regexp.MustCompile(`\b(management|mq)\b`)
	inServiceRE = regexp.MustCompile(`\bin[\s-]?service\b`)
	nriRE       = regexp.MustCompile(`\bnri\b`)
	descRE      = regexp.MustCompile(`\b(desc|descending|highest first|reverse)\b`)
)

// Interpretation is a question translated into search filters.
type Interpretation struct {
	Spec search.Spec
	// Notes describe, in words, what was understood.
	Notes []string
	// Engine is "gemini" or "rules".
	Engine string
}

// ParseQuestion turns a question into search filters with keyword rules. It
// starts from the default filters for opts and narrows each group the question
// mentions. It never fails; a question with nothing recognisable returns the
// default filters.
func ParseQuestion(question string, opts search.Options) Interpretation {
	q := strings.ToLower(question)
	spec := search.DefaultSpec(opts)
	var notes []string

	if years := matchYears(q, opts.Years); len(years) > 0 {
		spec.Years = years
		notes = append(notes, "years "+strings.Join(years, ", "))
	}
	q = stripYears(q, opts.Years)

	lo, hi := parseRankRange(q)
	spec.MinRank, spec.MaxRank = lo, hi
	if lo > 0 || hi > 0 {
		notes = append(notes, "ranks "+rangeText(lo, hi))
	}

	switch f, m := femaleRE.MatchString(q), maleRE.MatchString(q); {
	case f && !m:
		spec.Male, spec.Female = false, true
		notes = append(notes, "female seats")
	case m && !f:
		spec.Male, spec.Female = true, false
		notes = append(notes, "male seats")
	}

	if quotas := matchQuotas(q, opts.Quotas); len(quotas) > 0 {
		spec.Quotas = quotas
		notes = append(notes, "quotas "+strings.Join(quotas, ", "))
	}
	if cats := matchCategories(q, opts.Categories); len(cats) > 0 {
		spec.Categories = cats
		notes = append(notes, "categories "+strings.Join(cats, ", "))
	}
	if colleges := matchColleges(q, opts.Colleges); len(colleges) > 0 {
		spec.Colleges = colleges
		notes = append(notes, "colleges "+strings.Join(colleges, "; "))
	}
	if courses := prompts.NewCourseNameMatcher(opts.Courses).FindMatchingCourses(q); len(courses) > 0 {
		spec.Courses = courses
		notes = append(notes, "courses "+strings.Join(courses, "; "))
	}

	if phRE.MatchString(q) {
		spec.Only.PH = true
		notes = append(notes, "PH only")
	}
	if minorityRE.MatchString(q) {
		spec.Only.MIN = true
		notes = append(notes, "minority only")
	}
	if mrcRE.MatchString(q) {
		spec.Only.MRC = true
		notes = append(notes, "MRC only")
	}
	if localRE.MatchString(q) && !nonLocalRE.MatchString(q) {
		spec.Only.Local = true
		notes = append(notes, "local only")
	}

	switch {
	case strings.Contains(q, "by year"):
		spec.Sort = search.SortYear
	case strings.Contains(q, "by college"):
		spec.Sort = search.SortCollege
	}
	spec.Desc = descRE.MatchString(q)

	return Interpretation{Spec: spec, Notes: notes, Engine: "rules"}
}

func matchYears(q string, available []string) []string {
	var out []string
	for _, m := range yearRE.FindAllStringSubmatch(q, -1) {
		yy, _ := strconv.Atoi(m[1])
		for _, y := range available {
			n, err := strconv.Atoi(y)
			if err == nil && n%100 == yy && !contains(out, y) {
				out = append(out, y)
			}
		}
	}
	return out
}

// stripYears blanks out the years that matched a known year so they are not
// read as ranks.
func stripYears(q string, available []string) string {
	return yearRE.ReplaceAllStringFunc(q, func(m string) string {
		if len(matchYears(m, available)) > 0 {
			return " "
		}
		return m
	})
}

func parseRankRange(q string) (lo, hi int) {
	if m := betweenRE.FindStringSubmatch(q); m != nil {
		return ordered(number(m[1]), number(m[2]))
	}
	if m := rangeRE.FindStringSubmatch(q); m != nil {
		return ordered(number(m[1]), number(m[2]))
	}
	if m := underRE.FindStringSubmatch(q); m != nil {
		hi = number(m[1])
	}
	if m := overRE.FindStringSubmatch(q); m != nil {
		lo = number(m[1])
	}
	if lo == 0 && hi == 0 {
		if m := singleRE.FindStringSubmatch(q); m != nil {
			n := number(m[1])
			return n, n
		}
	}
	return lo, hi
}

func ordered(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func number(s string) int {
	n, _ := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	return n
}

func rangeText(lo, hi int) string {
	switch {
	case lo > 0 && hi > 0:
		return strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
	case hi > 0:
		return "up to " + strconv.Itoa(hi)
	default:
		return "from " + strconv.Itoa(lo)
	}
}

func matchQuotas(q string, available []string) []string {
	var out []string
	add := func(v string) {
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	words := wordSet(q)
	for _, quota := range available {
		switch {
		case words[strings.ToLower(quota)]:
			add(quota)
		case managedRE.MatchString(q) && models.IsManagementQuota(quota):
			add(quota)
		case inServiceRE.MatchString(q) && quota == "S":
			add(quota)
		case nriRE.MatchString(q) && quota == "MQ3":
			add(quota)
		}
	}
	return out
}

// matchCategories recognises category words, folding open spellings to OC.
// Single letter words are skipped so "f" or "m" never read as categories.
func matchCategories(q string, available []string) []string {
	var out []string
	for _, w := range wordRE.FindAllString(q, -1) {
		if len(w) < 2 {
			continue
		}
		c := importer.CanonicalCategory(w)
		if c == strings.ToUpper(w) || c == models.CategoryOpen && isOpenWord(w) {
			if contains(available, c) && !contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func isOpenWord(w string) bool {
	switch w {
	case "oc", "open", "unreserved", "ur", "unr", "gn", "general":
		return true
	}
	return false
}

// matchColleges matches college abbreviations as whole words and college
// names (after the " - " separator) as substrings.
func matchColleges(q string, available []string) []string {
	words := wordSet(q)
	var out []string
	for _, c := range available {
		abbr := strings.ToLower(models.CollegeAbbreviation(c))
		name := strings.ToLower(c)
		if i := strings.Index(name, " - "); i >= 0 {
			name = strings.TrimSpace(name[i+3:])
		}
		if len(abbr) >= 3 && words[abbr] || len(name) >= 6 && strings.Contains(q, name) {
			out = append(out, c)
		}
	}
	return out
}

func wordSet(q string) map[string]bool {
	set := map[string]bool{}
	for _, w := range wordRE.FindAllString(q, -1) {
		set[w] = true
	}
	return set
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
