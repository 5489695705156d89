package importer

import (
	"regexp"
	"strconv"
	"strings"
)

// Phase ranks. Later rounds supersede earlier ones for the same candidate.
const (
	PhaseUnknown = 0
	PhaseRound1  = 1
	PhaseRound2  = 2
	PhaseRound3  = 3
	PhaseMopUp   = 4
	PhaseStray   = 5
)

var (
	strayRE   = regexp.MustCompile(`(?i)stray`)
	mopUpRE   = regexp.MustCompile(`(?i)mop[\s_-]*up`)
	roundRE   = regexp.MustCompile(`(?i)(?:^|[^a-z])(?:r|rnd|round|phase|p)[\s_.-]*([1-9])(?:$|[^0-9])`)
	ordinalRE = regexp.MustCompile(`(?i)([1-9])(?:st|nd|rd|th)[\s_-]*(?:round|phase)`)
	digitsRE  = regexp.MustCompile(`(\d+)\s*$`)
)

// PhaseRank maps a free-text round label onto a total order used to decide
// which allotment is the most recent:
//
//	STRAY(5) > MOPUP(4) > round 3 > round 2 > round 1 > 0
//
// Keyword matches win over numeric parsing. Bare trailing digits ("P2") are
// read as a round number and clamped to round 3, so a numeric label never
// outranks a mop-up or stray round.
func PhaseRank(label string) int {
	label = strings.TrimSpace(label)
	if label == "" {
		return PhaseUnknown
	}
	switch {
	case strayRE.MatchString(label):
		return PhaseStray
	case mopUpRE.MatchString(label):
		return PhaseMopUp
	}
	if n, ok := roundNumber(label); ok {
		return clampRound(n)
	}
	if m := digitsRE.FindStringSubmatch(label); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return clampRound(n)
		}
	}
	return PhaseUnknown
}

func roundNumber(s string) (int, bool) {
	if m := ordinalRE.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	if m := roundRE.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	return 0, false
}

func clampRound(n int) int {
	if n <= 0 {
		return PhaseUnknown
	}
	if n > PhaseRound3 {
		return PhaseRound3
	}
	return n
}

// phaseLabel extracts a canonical round label (R1, MOPUP, STRAY) from free
// text such as a remarks column or a file path. It returns "" when nothing
// round-like is present.
func phaseLabel(s string) string {
	switch {
	case s == "":
		return ""
	case strayRE.MatchString(s):
		return "STRAY"
	case mopUpRE.MatchString(s):
		return "MOPUP"
	}
	if n, ok := roundNumber(s); ok {
		return "R" + strconv.Itoa(n)
	}
	return ""
}
