package models

import (
	"regexp"
	"strconv"
)

var courseNumberRE = regexp.MustCompile(`\((\d+)\)`)

// CourseNumber extracts the numeric course code, e.g. 17 from "ENT (017) - MS(ENT)".
// Names without a code sort last.
func CourseNumber(name string) int {
	m := courseNumberRE.FindStringSubmatch(name)
	if m == nil {
		return 999
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 999
	}
	return n
}
