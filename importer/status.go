package importer

import (
	"strings"
	"unicode"

	"github.com/nonsonwune/counselling_db/models"
)

var (
	phTokens     = map[string]bool{"PHO": true, "PH": true, "PWD": true}
	minTokens    = map[string]bool{"MIN": true}
	mrcTokens    = map[string]bool{"MRC": true}
	localTokens  = map[string]bool{"LOC": true, "LOCAL": true}
	femaleTokens = map[string]bool{"FEM": true, "F": true, "FEMALE": true}
	maleTokens   = map[string]bool{"GEN": true, "M": true, "MALE": true}

	openCategories = map[string]bool{
		"OC": true, "OPEN": true, "UNR": true, "UR": true, "GN": true, "GENERAL": true,
	}
	reservedCategories = map[string]bool{
		"EWS": true, "SC": true, "ST": true, "OBC": true,
		"BCA": true, "BCB": true, "BCC": true, "BCD": true, "BCE": true,
	}
)

// DecodeStatus parses a hyphen-delimited admission detail token such as
// "NS-SC-FEM-PHO-R2". The first token is the admission type and the last is
// the round unless it is a known status marker; the tokens in between are treated as an unordered set of flags,
// a gender marker and at most one reservation category.
//
// DecodeStatus never fails: empty or unreadable input yields
// models.DefaultAdmissionStatus.
func DecodeStatus(token string) models.AdmissionStatus {
	tokens := splitTokens(token)
	if len(tokens) == 0 {
		return models.DefaultAdmissionStatus()
	}
	admissionType, rest := tokens[0], tokens[1:]
	phase := ""
	if n := len(rest); n > 0 && isPhaseToken(rest[n-1]) {
		phase, rest = rest[n-1], rest[:n-1]
	}
	return decodeFields(admissionType, phase, rest)
}

// isPhaseToken reports whether the trailing token can be a round. A known
// flag, gender or category marker is kept for decoding instead, so
// "MQ1-MIN" stays a minority row with no round.
func isPhaseToken(t string) bool {
	if PhaseRank(t) > PhaseUnknown {
		return true
	}
	if _, ok := categoryToken(t); ok {
		return false
	}
	for _, set := range []map[string]bool{phTokens, minTokens, mrcTokens, localTokens, femaleTokens, maleTokens} {
		if set[t] {
			return false
		}
	}
	return true
}

// decodeFields fills a status from an already separated admission type, phase
// and middle tokens.
func decodeFields(admissionType, phase string, middle []string) models.AdmissionStatus {
	st := models.DefaultAdmissionStatus()
	st.AdmissionType = strings.ToUpper(strings.TrimSpace(admissionType))
	st.Phase = strings.TrimSpace(phase)

	// Management quota rows only ever carry a minority marker.
	if models.IsManagementQuota(st.AdmissionType) {
		for _, t := range middle {
			if minTokens[t] {
				st.IsMIN = true
				break
			}
		}
		return st
	}

	rest := append([]string(nil), middle...)
	rest, st.IsPH = takeToken(rest, phTokens)
	rest, st.IsMIN = takeToken(rest, minTokens)
	rest, st.IsMRC = takeToken(rest, mrcTokens)
	rest, st.IsLocal = takeToken(rest, localTokens)

	var female bool
	rest, female = takeToken(rest, femaleTokens)
	if female {
		st.Gender = models.Female
	} else {
		rest, _ = takeToken(rest, maleTokens)
	}

	for _, t := range rest {
		if c, ok := categoryToken(t); ok {
			st.AllottedCategory = c
			break
		}
	}
	return st
}

// CanonicalCategory folds the open/unreserved spellings into "OC" and returns
// other reservation categories upper-cased. Empty input is "OC".
func CanonicalCategory(s string) string {
	tokens := splitTokens(s)
	if len(tokens) == 0 {
		return models.CategoryOpen
	}
	for _, t := range tokens {
		if c, ok := categoryToken(t); ok {
			return c
		}
	}
	return tokens[0]
}

func categoryToken(t string) (string, bool) {
	switch {
	case openCategories[t]:
		return models.CategoryOpen, true
	case reservedCategories[t]:
		return t, true
	}
	return "", false
}

// takeToken removes the first token found in set.
func takeToken(tokens []string, set map[string]bool) ([]string, bool) {
	for i, t := range tokens {
		if set[t] {
			return append(tokens[:i], tokens[i+1:]...), true
		}
	}
	return tokens, false
}

func splitTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || unicode.IsSpace(r)
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.ToUpper(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
