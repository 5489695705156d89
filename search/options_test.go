package search

import (
	"reflect"
	"testing"

	"github.com/nonsonwune/counselling_db/models"
)

func TestCollectOptions(t *testing.T) {
	recs := []models.CandidateRecord{
		stateRec(1, func(r *models.CandidateRecord) { r.Year = "23"; r.College = "B(002) - COLLEGE B"; r.AdmissionType = "S" }),
		stateRec(2, func(r *models.CandidateRecord) { r.Course = "PM (004) - MD(PM)"; r.CandidateCategory = "SC" }),
		stateRec(3, func(r *models.CandidateRecord) {
			r.Year = "25"
			r.Source = models.StateManagement
			r.AdmissionType = "MQ2"
			r.CandidateCategory = "BCB"
		}),
		{Rank: 4, Year: "24", Source: models.AllIndia, College: "AIIMS", Course: "MD (Medicine)", AdmissionType: "Open Seat Quota", CandidateCategory: "EWS"},
		stateRec(5),
	}

	got := CollectOptions(recs)
	want := Options{
		Years:      []string{"25", "24", "23"},
		Quotas:     []string{"NS", "MQ2", "Open Seat Quota", "S"},
		Colleges:   []string{"A(001) - COLLEGE A", "AIIMS", "B(002) - COLLEGE B"},
		Courses:    []string{"PM (004) - MD(PM)", "ENT (017) - MS(ENT)", "MD (Medicine)"},
		Categories: []string{"OC", "SC"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectOptions =\n%+v\nwant\n%+v", got, want)
	}
}

func TestDefaultSpec(t *testing.T) {
	opts := Options{
		Years:      []string{"24"},
		Quotas:     []string{"NS", "S"},
		Colleges:   []string{"A"},
		Courses:    []string{"ENT"},
		Categories: []string{"OC"},
	}
	s := DefaultSpec(opts)
	if !reflect.DeepEqual(s.Quotas, []string{"NS"}) {
		t.Errorf("Quotas = %v, want [NS]", s.Quotas)
	}
	if !reflect.DeepEqual(s.Years, opts.Years) || !reflect.DeepEqual(s.Colleges, opts.Colleges) {
		t.Errorf("spec does not select everything: %+v", s)
	}
	s.Years[0] = "99"
	if opts.Years[0] != "24" {
		t.Error("DefaultSpec shares slices with its options")
	}
	if !s.Male || !s.Female || !s.Include.PH || !s.Include.NonLocal || s.Sort != SortRank {
		t.Errorf("defaults not applied: %+v", s)
	}

	s = DefaultSpec(Options{Quotas: []string{"Open Seat Quota", "Deemed"}})
	if !reflect.DeepEqual(s.Quotas, []string{"Open Seat Quota", "Deemed"}) {
		t.Errorf("without NS Quotas = %v", s.Quotas)
	}
}

func TestFilterOptions(t *testing.T) {
	values := []string{"OSMANIA MEDICAL COLLEGE", "Gandhi Medical College", "KAMINENI"}
	if got := FilterOptions(values, "medical"); len(got) != 2 {
		t.Errorf("FilterOptions(medical) = %v", got)
	}
	if got := FilterOptions(values, "  "); !reflect.DeepEqual(got, values) {
		t.Errorf("blank term = %v", got)
	}
	if got := FilterOptions(values, "xyz"); len(got) != 0 {
		t.Errorf("no match = %v", got)
	}
}

func TestLabels(t *testing.T) {
	if QuotaLabel("MQ3") != "MQ3 (NRI/Institutional)" || QuotaLabel("Deemed") != "Deemed" {
		t.Error("QuotaLabel")
	}
	if GenderLabel(models.Female) != "FEM" || GenderLabel(models.Male) != "GEN" {
		t.Error("GenderLabel")
	}
}
