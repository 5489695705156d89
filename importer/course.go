package importer

import (
	"fmt"
	"regexp"

	"github.com/nonsonwune/counselling_db/models"
)

var courseCodeRE = regexp.MustCompile(`^([A-Z]+)\s*\((\d+)\)`)

// CourseNormalizer folds spelling variants of a course onto one display name,
// keyed by the course code prefix, e.g. "ENT(17) MS ENT" -> "ENT (017) - MS(ENT)".
type CourseNormalizer struct {
	names map[string]string
}

func NewCourseNormalizer(mappings []models.CourseCodeMapping) *CourseNormalizer {
	n := &CourseNormalizer{names: make(map[string]string, len(mappings))}
	for _, m := range mappings {
		n.names[m.CourseKey] = m.CanonicalName
	}
	return n
}

// Normalize returns the canonical name for raw, or raw unchanged when it has
// no code prefix or the code is not in the table. It is idempotent.
func (n *CourseNormalizer) Normalize(raw string) string {
	key, ok := CourseKey(raw)
	if !ok {
		return raw
	}
	if name, ok := n.names[key]; ok {
		return name
	}
	return raw
}

// CourseKey extracts the padded "CODE(NNN)" key of a course name.
func CourseKey(raw string) (string, bool) {
	m := courseCodeRE.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s(%s)", m[1], padCode(m[2])), true
}

func padCode(num string) string {
	for len(num) < 3 {
		num = "0" + num
	}
	return num
}

var defaultCourses = NewCourseNormalizer(models.DefaultCourseCodeMappings)

// NormalizeCourse normalises with the built-in course table.
func NormalizeCourse(raw string) string {
	return defaultCourses.Normalize(raw)
}
