package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SourceCategory identifies the quota pool (and raw schema family) a file belongs to.
type SourceCategory string

const (
	StateCounselling SourceCategory = "CQ"
	StateManagement  SourceCategory = "MQ"
	AllIndia         SourceCategory = "AIQ"
)

// ParseSourceCategory accepts the manifest spellings of a category.
func ParseSourceCategory(s string) (SourceCategory, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CQ":
		return StateCounselling, true
	case "MQ":
		return StateManagement, true
	case "AIQ":
		return AllIndia, true
	}
	return "", false
}

// IsState reports whether the category belongs to the state source.
func (c SourceCategory) IsState() bool {
	return c == StateCounselling || c == StateManagement
}

// DataSource is the user facing data set switch.
type DataSource string

const (
	SourceState    DataSource = "state"
	SourceAllIndia DataSource = "aiq"
)

// ParseDataSource accepts "state" (or the legacy "telangana") and "aiq".
func ParseDataSource(s string) (DataSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "state", "telangana":
		return SourceState, nil
	case "aiq", "allindia", "all-india":
		return SourceAllIndia, nil
	}
	return "", fmt.Errorf("unknown data source %q (want state or aiq)", s)
}

// Includes reports whether files of category c are part of this data source.
func (d DataSource) Includes(c SourceCategory) bool {
	if d == SourceAllIndia {
		return c == AllIndia
	}
	return c.IsState()
}

// Gender is binary in the source data; unknown values default to Male.
type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

// CategoryOpen is the canonical token for open/unreserved seats.
const CategoryOpen = "OC"

// CandidateRecord is one canonical admission row after mapping.
type CandidateRecord struct {
	Rank              int            `json:"rank"`
	Year              string         `json:"year"`
	Source            SourceCategory `json:"category"`
	College           string         `json:"college"`
	Course            string         `json:"course"`
	AdmissionType     string         `json:"admissionType"`
	AllottedCategory  string         `json:"allottedCategory"`
	CandidateCategory string         `json:"candidateCategory"`
	Gender            Gender         `json:"gender"`
	IsPH              bool           `json:"isPH"`
	IsMIN             bool           `json:"isMIN"`
	IsMRC             bool           `json:"isMRC"`
	IsLocal           bool           `json:"isLocal"`
	Phase             string         `json:"phase"`
	FileName          string         `json:"fileName"`
	RawDetail         string         `json:"rawDetail,omitempty"`
}

// IsStray reports whether the record came from a stray-vacancy round file.
func (c CandidateRecord) IsStray() bool {
	return strings.Contains(strings.ToLower(c.FileName), "stray")
}

// IsManagementQuota reports whether the seat was allotted under an MQ sub-quota.
func (c CandidateRecord) IsManagementQuota() bool {
	return IsManagementQuota(c.AdmissionType)
}

// IsManagementQuota reports whether an admission type code is one of MQ1..MQ3.
func IsManagementQuota(admissionType string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(admissionType)), "MQ")
}

// FlexInt decodes ranks published either as JSON numbers or as numeric strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(str), ",", "")
	}
	if i, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(i)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid rank %s", string(b))
	}
	*f = FlexInt(int(fl))
	return nil
}

// LooseString decodes a value published either as a JSON string or as a
// number, such as a year given as "24" or 24.
type LooseString string

func (s *LooseString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = LooseString(strings.TrimSpace(v))
		return nil
	}
	if raw == "null" {
		*s = ""
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("invalid value %s", raw)
	}
	*s = LooseString(raw)
	return nil
}
