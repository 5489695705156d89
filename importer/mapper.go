package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nonsonwune/counselling_db/models"
)

// RawRecord is one decoded source row. It is either a StateRecord or an
// AllIndiaRecord; ToCandidate switches over the two.
type RawRecord interface {
	rawRecord()
}

// LegacyStatus holds the separate status columns of the nested-by-college files.
type LegacyStatus struct {
	AdmissionType    string
	AllottedCategory string
	AllottedGender   string
	Phase            string
}

// StateRecord is a row of the state counselling source (CQ and MQ files).
type StateRecord struct {
	Rank              int
	Year              string
	Category          models.SourceCategory
	College           string
	Course            string
	Detail            string
	CandidateCategory string
	Legacy            *LegacyStatus
	FileName          string
	// FallbackPhase comes from the manifest when the row carries no round.
	FallbackPhase string
}

// AllIndiaRecord is a row of the all-India (MCC) allotment lists.
type AllIndiaRecord struct {
	Rank              int
	Year              string
	Quota             string
	Institute         string
	Course            string
	AllottedCategory  string
	CandidateCategory string
	Remarks           string
	Path              string
	FileName          string
	FallbackPhase     string
}

func (StateRecord) rawRecord()    {}
func (AllIndiaRecord) rawRecord() {}

var errMissingRank = errors.New("row has no rank")

// ToCandidate maps a raw row onto the canonical record.
func ToCandidate(raw RawRecord) (models.CandidateRecord, error) {
	switch r := raw.(type) {
	case StateRecord:
		return fromState(r)
	case AllIndiaRecord:
		return fromAllIndia(r)
	default:
		return models.CandidateRecord{}, fmt.Errorf("unsupported raw record %T", raw)
	}
}

func fromState(r StateRecord) (models.CandidateRecord, error) {
	if r.Rank <= 0 {
		return models.CandidateRecord{}, errMissingRank
	}

	var st models.AdmissionStatus
	switch {
	case r.Detail != "":
		st = DecodeStatus(r.Detail)
	case r.Legacy != nil:
		middle := append(splitTokens(r.Legacy.AllottedCategory), splitTokens(r.Legacy.AllottedGender)...)
		st = decodeFields(r.Legacy.AdmissionType, r.Legacy.Phase, middle)
	default:
		st = models.DefaultAdmissionStatus()
	}
	if st.Phase == "" {
		st.Phase = r.FallbackPhase
	}

	candidateCategory := st.AllottedCategory
	if strings.TrimSpace(r.CandidateCategory) != "" {
		candidateCategory = CanonicalCategory(r.CandidateCategory)
	}

	raw := r.Detail
	if raw == "" && r.Legacy != nil {
		raw = strings.TrimSpace(strings.Join([]string{
			r.Legacy.AdmissionType, r.Legacy.AllottedCategory, r.Legacy.AllottedGender, r.Legacy.Phase,
		}, " "))
	}

	return models.CandidateRecord{
		Rank:              r.Rank,
		Year:              r.Year,
		Source:            r.Category,
		College:           strings.TrimSpace(r.College),
		Course:            NormalizeCourse(strings.TrimSpace(r.Course)),
		AdmissionType:     st.AdmissionType,
		AllottedCategory:  st.AllottedCategory,
		CandidateCategory: candidateCategory,
		Gender:            st.Gender,
		IsPH:              st.IsPH,
		IsMIN:             st.IsMIN,
		IsMRC:             st.IsMRC,
		IsLocal:           st.IsLocal,
		Phase:             st.Phase,
		FileName:          r.FileName,
		RawDetail:         raw,
	}, nil
}

func fromAllIndia(r AllIndiaRecord) (models.CandidateRecord, error) {
	if r.Rank <= 0 {
		return models.CandidateRecord{}, errMissingRank
	}

	phase := phaseFromRemarks(r.Remarks)
	if phase == "" {
		phase = phaseLabel(r.Path)
	}
	if phase == "" {
		phase = r.FallbackPhase
	}
	if phase == "" && upgradedRE.MatchString(r.Remarks) {
		// Upgrades are first offered in the second round.
		phase = "R2"
	}

	isPH := strings.Contains(strings.ToUpper(r.CandidateCategory), "PWD") ||
		strings.Contains(strings.ToUpper(r.AllottedCategory), "PWD")

	return models.CandidateRecord{
		Rank:              r.Rank,
		Year:              r.Year,
		Source:            models.AllIndia,
		College:           strings.TrimSpace(r.Institute),
		Course:            NormalizeCourse(strings.TrimSpace(r.Course)),
		AdmissionType:     strings.TrimSpace(r.Quota),
		AllottedCategory:  CanonicalCategory(r.AllottedCategory),
		CandidateCategory: CanonicalCategory(r.CandidateCategory),
		Gender:            models.Male,
		IsPH:              isPH,
		Phase:             phase,
		FileName:          r.FileName,
		RawDetail:         strings.TrimSpace(r.Remarks),
	}, nil
}

var (
	remarksOrdinalRE = regexp.MustCompile(`(?i)(\d+)\s*(?:st|nd|rd|th)\s+round`)
	remarksRoundRE   = regexp.MustCompile(`(?i)round[\s_-]*(\d+)`)
	upgradedRE       = regexp.MustCompile(`(?i)upgraded`)
)

// phaseFromRemarks reads the round out of MCC remarks such as
// "Upgraded in 2nd Round" or "Fresh Allotted in Round 3".
func phaseFromRemarks(remarks string) string {
	if remarks == "" {
		return ""
	}
	if m := remarksOrdinalRE.FindStringSubmatch(remarks); m != nil {
		return "R" + m[1]
	}
	if m := remarksRoundRE.FindStringSubmatch(remarks); m != nil {
		return "R" + m[1]
	}
	switch {
	case strayRE.MatchString(remarks):
		return "STRAY"
	case mopUpRE.MatchString(remarks):
		return "MOPUP"
	}
	return ""
}

type legacyFile struct {
	Year     models.LooseString `json:"year"`
	Category string             `json:"category"`
	FileName string             `json:"fileName"`
	Colleges json.RawMessage    `json:"colleges"`
}

type legacyRow struct {
	Rank             models.FlexInt `json:"rank"`
	AdmissionType    string         `json:"admissionType"`
	AllottedCategory string         `json:"allottedCategory"`
	AllottedGender   string         `json:"allottedGender"`
	Phase            string         `json:"phase"`
	Details          string         `json:"details"`
}

type stateRow struct {
	Rank     models.FlexInt `json:"rank"`
	College  string         `json:"college"`
	Course   string         `json:"course"`
	Details  string         `json:"details"`
	Category string         `json:"category"`
	Phase    string         `json:"phase"`
}

type allIndiaRow struct {
	Rank              models.FlexInt `json:"Rank"`
	Quota             string         `json:"Allotted Quota"`
	Institute         string         `json:"Allotted Institute"`
	Course            string         `json:"Course"`
	AllottedCategory  string         `json:"Allotted Category"`
	CandidateCategory string         `json:"Candidate Category"`
	Remarks           string         `json:"Remarks"`
}

// DecodeFile decodes one raw data file into rows. A top-level JSON array is
// the flat schema (state or all-India, chosen by the descriptor category); a
// top-level object is the legacy nested-by-college schema.
func DecodeFile(data []byte, desc models.FileDescriptor) ([]RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty file")
	}
	switch trimmed[0] {
	case '[':
		if desc.Category == models.AllIndia {
			return decodeAllIndia(trimmed, desc)
		}
		return decodeFlatState(trimmed, desc)
	case '{':
		return decodeNested(trimmed, desc)
	default:
		return nil, fmt.Errorf("unrecognised file layout (starts with %q)", trimmed[0])
	}
}

func decodeFlatState(data []byte, desc models.FileDescriptor) ([]RawRecord, error) {
	var rows []stateRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse state rows: %w", err)
	}
	out := make([]RawRecord, 0, len(rows))
	for _, row := range rows {
		phase := row.Phase
		if phase == "" {
			phase = desc.Phase
		}
		out = append(out, StateRecord{
			Rank:              int(row.Rank),
			Year:              desc.Year,
			Category:          desc.Category,
			College:           row.College,
			Course:            row.Course,
			Detail:            row.Details,
			CandidateCategory: row.Category,
			FileName:          desc.FileName(),
			FallbackPhase:     phase,
		})
	}
	return out, nil
}

func decodeAllIndia(data []byte, desc models.FileDescriptor) ([]RawRecord, error) {
	var rows []allIndiaRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse all-India rows: %w", err)
	}
	out := make([]RawRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, AllIndiaRecord{
			Rank:              int(row.Rank),
			Year:              desc.Year,
			Quota:             row.Quota,
			Institute:         row.Institute,
			Course:            row.Course,
			AllottedCategory:  row.AllottedCategory,
			CandidateCategory: row.CandidateCategory,
			Remarks:           row.Remarks,
			Path:              desc.Path,
			FileName:          desc.FileName(),
			FallbackPhase:     desc.Phase,
		})
	}
	return out, nil
}

// decodeNested flattens a legacy file. Courses of one college whose names
// normalise to the same course are merged first, keeping the order in which
// each course first appears.
func decodeNested(data []byte, desc models.FileDescriptor) ([]RawRecord, error) {
	var f legacyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse nested file: %w", err)
	}
	if len(f.Colleges) == 0 {
		return nil, errors.New("nested file has no colleges")
	}

	year := string(f.Year)
	if year == "" {
		year = desc.Year
	}
	category := desc.Category
	if c, ok := models.ParseSourceCategory(f.Category); ok {
		category = c
	}
	fileName := f.FileName
	if fileName == "" {
		fileName = desc.FileName()
	}

	var out []RawRecord
	err := eachObjectField(f.Colleges, func(college string, courses json.RawMessage) error {
		var order []string
		merged := make(map[string][]legacyRow)
		err := eachObjectField(courses, func(course string, rowsJSON json.RawMessage) error {
			var rows []legacyRow
			if err := json.Unmarshal(rowsJSON, &rows); err != nil {
				return fmt.Errorf("college %q course %q: %w", college, course, err)
			}
			name := NormalizeCourse(course)
			if _, seen := merged[name]; !seen {
				order = append(order, name)
			}
			merged[name] = append(merged[name], rows...)
			return nil
		})
		if err != nil {
			return err
		}
		for _, course := range order {
			for _, row := range merged[course] {
				phase := row.Phase
				if phase == "" {
					phase = desc.Phase
				}
				out = append(out, StateRecord{
					Rank:     int(row.Rank),
					Year:     year,
					Category: category,
					College:  college,
					Course:   course,
					Detail:   row.Details,
					Legacy: &LegacyStatus{
						AdmissionType:    row.AdmissionType,
						AllottedCategory: row.AllottedCategory,
						AllottedGender:   row.AllottedGender,
						Phase:            phase,
					},
					FileName:      fileName,
					FallbackPhase: desc.Phase,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// eachObjectField walks a JSON object in document order.
func eachObjectField(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
