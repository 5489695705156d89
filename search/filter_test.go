package search

import (
	"strconv"
	"testing"

	"github.com/nonsonwune/counselling_db/models"
)

func stateRec(rank int, mutate ...func(*models.CandidateRecord)) models.CandidateRecord {
	r := models.CandidateRecord{
		Rank:              rank,
		Year:              "24",
		Source:            models.StateCounselling,
		College:           "A(001) - COLLEGE A",
		Course:            "ENT (017) - MS(ENT)",
		AdmissionType:     "NS",
		AllottedCategory:  "OC",
		CandidateCategory: "OC",
		Gender:            models.Male,
		IsLocal:           true,
		Phase:             "R1",
	}
	for _, m := range mutate {
		m(&r)
	}
	return r
}

// allSpec selects every group value used by stateRec.
func allSpec() Spec {
	s := NewSpec()
	s.Years = []string{"24"}
	s.Quotas = []string{"NS", "MQ1"}
	s.Colleges = []string{"A(001) - COLLEGE A"}
	s.Courses = []string{"ENT (017) - MS(ENT)"}
	s.Categories = []string{"OC", "SC"}
	return s
}

func TestMatchesSelection(t *testing.T) {
	r := stateRec(100)

	if !Matches(r, allSpec()) {
		t.Fatal("fully selected spec rejected the record")
	}

	s := allSpec()
	s.Colleges = nil
	if Matches(r, s) {
		t.Error("empty college group matched under OptIn")
	}
	s.Selection = EmptyMeansAll
	if !Matches(r, s) {
		t.Error("empty college group rejected under EmptyMeansAll")
	}

	s = allSpec()
	s.Categories = []string{"SC"}
	if Matches(r, s) {
		t.Error("unselected category matched")
	}
	r.AllottedCategory = "SC"
	if Matches(r, s) {
		t.Error("category filter used the allotted category instead of the candidate category")
	}
}

func TestMatchesRankRange(t *testing.T) {
	tests := []struct {
		min, max int
		rank     int
		want     bool
	}{
		{0, 0, 5, true},
		{10, 0, 5, false},
		{10, 0, 10, true},
		{0, 100, 100, true},
		{0, 100, 101, false},
		{50, 60, 55, true},
	}
	for _, tt := range tests {
		s := allSpec()
		s.MinRank, s.MaxRank = tt.min, tt.max
		if got := Matches(stateRec(tt.rank), s); got != tt.want {
			t.Errorf("range [%d,%d] rank %d = %v, want %v", tt.min, tt.max, tt.rank, got, tt.want)
		}
	}
}

func TestMatchesGender(t *testing.T) {
	male := stateRec(1)
	female := stateRec(2, func(r *models.CandidateRecord) { r.Gender = models.Female })

	tests := []struct {
		male, female bool
		wantM, wantF bool
	}{
		{true, true, true, true},
		{false, false, true, true},
		{true, false, true, false},
		{false, true, false, true},
	}
	for _, tt := range tests {
		s := allSpec()
		s.Male, s.Female = tt.male, tt.female
		if Matches(male, s) != tt.wantM || Matches(female, s) != tt.wantF {
			t.Errorf("male=%v female=%v: got %v/%v", tt.male, tt.female, Matches(male, s), Matches(female, s))
		}
	}
}

func TestMatchesStatusToggles(t *testing.T) {
	plain := stateRec(1)
	ph := stateRec(2, func(r *models.CandidateRecord) { r.IsPH = true })
	minority := stateRec(3, func(r *models.CandidateRecord) { r.IsMIN = true })
	mrc := stateRec(4, func(r *models.CandidateRecord) { r.IsMRC = true })
	nonLocal := stateRec(5, func(r *models.CandidateRecord) { r.IsLocal = false })

	tests := []struct {
		name string
		edit func(*Spec)
		want []bool // plain, ph, min, mrc, nonLocal
	}{
		{"defaults", func(s *Spec) {}, []bool{true, true, true, true, true}},
		{"exclude ph", func(s *Spec) { s.Include.PH = false }, []bool{true, false, true, true, true}},
		{"exclude min", func(s *Spec) { s.Include.MIN = false }, []bool{true, true, false, true, true}},
		{"exclude mrc", func(s *Spec) { s.Include.MRC = false }, []bool{true, true, true, false, true}},
		{"exclude non-local", func(s *Spec) { s.Include.NonLocal = false }, []bool{true, true, true, true, false}},
		{"only ph", func(s *Spec) { s.Only.PH = true }, []bool{false, true, false, false, false}},
		{"only min", func(s *Spec) { s.Only.MIN = true }, []bool{false, false, true, false, false}},
		{"only mrc", func(s *Spec) { s.Only.MRC = true }, []bool{false, false, false, true, false}},
		{"only local", func(s *Spec) { s.Only.Local = true }, []bool{true, true, true, true, false}},
	}
	recs := []models.CandidateRecord{plain, ph, minority, mrc, nonLocal}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := allSpec()
			tt.edit(&s)
			for i, r := range recs {
				if got := Matches(r, s); got != tt.want[i] {
					t.Errorf("record %d: got %v, want %v", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestMatchesManagementQuotaExemptions(t *testing.T) {
	mq := stateRec(80000, func(r *models.CandidateRecord) {
		r.Source = models.StateManagement
		r.AdmissionType = "MQ1"
		r.CandidateCategory = "BCB"
		r.Gender = models.Female
		r.IsMIN = true
		r.IsLocal = false
	})
	s := allSpec()
	s.Categories = []string{"SC"}
	s.Female = false
	s.Include = Include{}
	s.Only = Only{PH: true, MIN: false, MRC: true, Local: true}
	if !Matches(mq, s) {
		t.Error("management quota record was filtered on category, gender or status")
	}

	s.Quotas = []string{"NS"}
	if Matches(mq, s) {
		t.Error("management quota record escaped the quota filter")
	}
	s = allSpec()
	s.MaxRank = 100
	if Matches(mq, s) {
		t.Error("management quota record escaped the rank filter")
	}
}

func TestMatchesAllIndia(t *testing.T) {
	aiq := models.CandidateRecord{
		Rank: 42, Year: "24", Source: models.AllIndia,
		College: "AIIMS", Course: "MD (Medicine)", AdmissionType: "Open Seat Quota",
		CandidateCategory: "OC", Gender: models.Male,
	}
	s := NewSpec()
	s.Years = []string{"24"}
	s.Quotas = []string{"Open Seat Quota"}
	s.Colleges = []string{"AIIMS"}
	s.Courses = []string{"MD (Medicine)"}
	s.Male = false
	s.Include.NonLocal = false
	s.Only.MIN = true
	if !Matches(aiq, s) {
		t.Error("all-India record filtered on category, gender, MIN or local")
	}

	s.Only.PH = true
	if Matches(aiq, s) {
		t.Error("PH only toggle ignored for all-India record")
	}
	aiq.IsPH = true
	if !Matches(aiq, s) {
		t.Error("PH all-India record rejected")
	}
}

func TestResetTransient(t *testing.T) {
	s := allSpec()
	s.Only = Only{PH: true, MIN: true, MRC: true, Local: true}
	s.Include.PH = false
	s.ResetTransient()
	if s.Only != (Only{}) {
		t.Errorf("Only = %+v after reset", s.Only)
	}
	if s.Include.PH {
		t.Error("ResetTransient touched an include toggle")
	}
}

func TestRunSortsAndPages(t *testing.T) {
	var recs []models.CandidateRecord
	for i := 250; i >= 1; i-- {
		recs = append(recs, stateRec(i))
	}
	res := Run(recs, allSpec())
	if res.Total != 250 || len(res.Records) != PageSize || !res.Truncated() {
		t.Fatalf("Total=%d len=%d truncated=%v", res.Total, len(res.Records), res.Truncated())
	}
	if res.Records[0].Rank != 1 || res.Records[PageSize-1].Rank != PageSize {
		t.Errorf("page runs %d..%d", res.Records[0].Rank, res.Records[PageSize-1].Rank)
	}
	if recs[0].Rank != 250 {
		t.Error("Run reordered its input")
	}

	s := allSpec()
	s.MaxRank = 3
	res = Run(recs, s)
	if res.Total != 3 || res.Truncated() {
		t.Errorf("small result Total=%d truncated=%v", res.Total, res.Truncated())
	}
}

func TestSort(t *testing.T) {
	recs := []models.CandidateRecord{
		{Rank: 30, Year: "23", College: "beta"},
		{Rank: 10, Year: "24", College: "Alpha"},
		{Rank: 20, Year: "23", College: "alpha"},
	}
	ranks := func() string {
		out := ""
		for _, r := range recs {
			out += strconv.Itoa(r.Rank) + " "
		}
		return out
	}

	Sort(recs, SortRank, false)
	if got := ranks(); got != "10 20 30 " {
		t.Errorf("rank asc = %s", got)
	}
	Sort(recs, SortRank, true)
	if got := ranks(); got != "30 20 10 " {
		t.Errorf("rank desc = %s", got)
	}
	Sort(recs, SortYear, false)
	if got := ranks(); got != "30 20 10 " {
		t.Errorf("year asc (stable) = %s", got)
	}
	Sort(recs, SortCollege, false)
	if got := ranks(); got != "20 10 30 " {
		t.Errorf("college asc = %s", got)
	}
}

func TestParseSelectionAndSort(t *testing.T) {
	if m, err := ParseSelectionMode("all"); err != nil || m != EmptyMeansAll {
		t.Errorf("ParseSelectionMode(all) = %v, %v", m, err)
	}
	if m, err := ParseSelectionMode(""); err != nil || m != OptIn {
		t.Errorf("ParseSelectionMode('') = %v, %v", m, err)
	}
	if _, err := ParseSelectionMode("some"); err == nil {
		t.Error("expected error")
	}
	if k, err := ParseSortKey("College"); err != nil || k != SortCollege {
		t.Errorf("ParseSortKey(College) = %v, %v", k, err)
	}
	if _, err := ParseSortKey("name"); err == nil {
		t.Error("expected error")
	}
}
