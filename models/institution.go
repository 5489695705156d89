package models

import (
	"regexp"
	"strings"
)

var collegeAbbrevRE = regexp.MustCompile(`^([A-Z]+)\(\d+\)`)

// CollegeAbbreviation returns the short code of a college name like
// "GAND(010) - GANDHI MEDICAL COLLEGE", or the first four letters otherwise.
func CollegeAbbreviation(name string) string {
	if m := collegeAbbrevRE.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	name = strings.TrimSpace(name)
	if len(name) > 4 {
		name = name[:4]
	}
	return strings.ToUpper(name)
}
