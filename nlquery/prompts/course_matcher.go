package prompts

import (
	"regexp"
	"sort"
	"strings"
)

// CourseNameMatcher finds the canonical course names a question refers to.
type CourseNameMatcher struct {
	courseNames map[string]string // lowercase name -> exact name
}

func NewCourseNameMatcher(names []string) *CourseNameMatcher {
	cm := &CourseNameMatcher{courseNames: make(map[string]string, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			cm.courseNames[strings.ToLower(n)] = n
		}
	}
	return cm
}

// Specialty keywords, matched against both the question and the course name.
var specialties = map[string][]string{
	"ent":           {"ent", "otorhinolaryngology", "otolaryngology", "ear nose"},
	"medicine":      {"general medicine", "internal medicine", "md(gm)", "md (general medicine)"},
	"surgery":       {"general surgery", "ms(gs)", "ms (general surgery)"},
	"paediatrics":   {"paediatrics", "pediatrics", "peds"},
	"obstetrics":    {"obstetrics", "gynaecology", "gynecology", "obg", "obgy"},
	"orthopaedics":  {"orthopaedics", "orthopedics", "ortho"},
	"radiology":     {"radiology", "radio-diagnosis", "radiodiagnosis", "radio diagnosis"},
	"radiotherapy":  {"radiotherapy", "radiation oncology"},
	"dermatology":   {"dermatology", "dvl", "skin"},
	"psychiatry":    {"psychiatry"},
	"anaesthesia":   {"anaesthesia", "anesthesia", "anaesthesiology"},
	"ophthalmology": {"ophthalmology", "eye"},
	"pulmonary":     {"pulmonary", "respiratory", "tb & chest", "chest"},
	"pathology":     {"pathology"},
	"pharmacology":  {"pharmacology"},
	"microbiology":  {"microbiology"},
	"forensic":      {"forensic"},
	"community":     {"community medicine", "spm", "social and preventive", "preventive medicine"},
	"tropical":      {"tropical medicine"},
	"emergency":     {"emergency medicine"},
	"anatomy":       {"anatomy"},
	"physiology":    {"physiology"},
	"biochemistry":  {"biochemistry"},
}

var courseCodeRE = regexp.MustCompile(`\b([a-z]+)\s*\((\d+)\)`)

// FindMatchingCourses returns the exact course names the question names,
// sorted. Full names win; otherwise course codes, then specialty keywords.
func (cm *CourseNameMatcher) FindMatchingCourses(question string) []string {
	q := strings.ToLower(question)
	seen := make(map[string]bool)
	var matches []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			matches = append(matches, name)
		}
	}

	for lower, exact := range cm.courseNames {
		if strings.Contains(q, lower) {
			add(exact)
		}
	}

	if len(matches) == 0 {
		for _, m := range courseCodeRE.FindAllStringSubmatch(q, -1) {
			code := m[1] + " (" + padCode(m[2]) + ")"
			for lower, exact := range cm.courseNames {
				if strings.HasPrefix(lower, code) {
					add(exact)
				}
			}
		}
	}

	if len(matches) == 0 {
		for _, keywords := range specialties {
			if !containsAnyWord(q, keywords) {
				continue
			}
			for lower, exact := range cm.courseNames {
				if containsAnyWord(lower, keywords) {
					add(exact)
				}
			}
		}
	}

	sort.Strings(matches)
	return matches
}

func padCode(n string) string {
	for len(n) < 3 {
		n = "0" + n
	}
	return n
}

// containsAnyWord matches keywords on word boundaries so "ent" does not
// match "patients".
func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		re := regexp.MustCompile(`(^|[^a-z])` + regexp.QuoteMeta(w) + `($|[^a-z])`)
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
