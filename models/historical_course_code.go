package models

// HistoryEntry is one allotment of a rank in one counselling round.
type HistoryEntry struct {
	Rank          int            `json:"rank"`
	Year          string         `json:"year"`
	Category      SourceCategory `json:"category"`
	Phase         string         `json:"phase"`
	PhaseRank     int            `json:"phaseRank"`
	College       string         `json:"college"`
	Course        string         `json:"course"`
	AdmissionType string         `json:"admissionType"`
	FileName      string         `json:"fileName"`
}
