package models

// MeritRank maps an exam rank onto the state merit list for one year/category.
type MeritRank struct {
	ExamRank    int            `json:"rank"`
	StateRank   int            `json:"stateRank"`
	Year        string         `json:"year"`
	Category    SourceCategory `json:"category"`
	MatchedRank int            `json:"matchedRank"`
	// Approximate is set when no exact entry existed and the nearest rank was used.
	Approximate bool `json:"approximate"`
}
