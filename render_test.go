package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/nonsonwune/counselling_db/models"
	"github.com/nonsonwune/counselling_db/search"
)

func init() {
	color.NoColor = true
}

func TestRenderResultsState(t *testing.T) {
	recs := []models.CandidateRecord{
		{
			Rank: 19566, Year: "24", Source: models.StateCounselling,
			College: "OMC(001) - OSMANIA MEDICAL COLLEGE", Course: "ENT (017) - MS(ENT)",
			AdmissionType: "NS", AllottedCategory: "SC", Gender: models.Female,
			IsPH: true, IsMIN: true, Phase: "R2", FileName: "cq_stray_r2.json",
		},
	}
	var buf bytes.Buffer
	renderResults(&buf, search.Result{Records: recs, Total: 1}, models.SourceState)
	out := buf.String()

	for _, want := range []string{"Found 1 results", "19566", "OMC", "NS (Regular)", "FEM", "PH MIN", "R2 (stray)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "OSMANIA") {
		t.Error("state table should show the college abbreviation")
	}
}

func TestRenderResultsAllIndiaAndPaging(t *testing.T) {
	rec := models.CandidateRecord{
		Rank: 42, Year: "24", Source: models.AllIndia, College: "AIIMS NEW DELHI",
		Course: "MD (Medicine)", AdmissionType: "Open Seat Quota",
		AllottedCategory: "OC", CandidateCategory: "EWS", IsPH: true, Phase: "R1",
	}
	var buf bytes.Buffer
	renderResults(&buf, search.Result{Records: []models.CandidateRecord{rec}, Total: 450}, models.SourceAllIndia)
	out := buf.String()
	for _, want := range []string{"Found 450 results (showing first 1)", "AIIMS NEW DELHI", "Open Seat Quota", "EWS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	renderResults(&buf, search.Result{}, models.SourceState)
	if !strings.Contains(buf.String(), "No results found") {
		t.Errorf("empty result output: %q", buf.String())
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	renderHistory(&buf, 19566, "24", models.StateCounselling, []models.HistoryEntry{
		{Phase: "R1", College: "A(001) - COLLEGE A", AdmissionType: "NS", FileName: "cq_r1.json"},
		{Phase: "", College: "B(002) - COLLEGE B", AdmissionType: "MQ1", FileName: "mq.json"},
	})
	out := buf.String()
	for _, want := range []string{"Rank 19566 History (24 CQ)", "COLLEGE A", "N/A", "MQ1 (B Category)", "cq_r1.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	renderHistory(&buf, 1, "24", models.StateCounselling, nil)
	if !strings.Contains(buf.String(), "No admission history found") {
		t.Errorf("empty history output: %q", buf.String())
	}
}

func TestRenderMerit(t *testing.T) {
	var buf bytes.Buffer
	renderMerit(&buf, models.MeritRank{ExamRank: 150, StateRank: 12, MatchedRank: 100, Approximate: true})
	if !strings.Contains(buf.String(), "state rank ~12 (nearest listed rank 100)") {
		t.Errorf("approximate output: %q", buf.String())
	}
	buf.Reset()
	renderMerit(&buf, models.MeritRank{ExamRank: 100, StateRank: 12, MatchedRank: 100})
	if !strings.Contains(buf.String(), "Exam rank 100: state rank 12") {
		t.Errorf("exact output: %q", buf.String())
	}
}

func TestPhaseText(t *testing.T) {
	tests := []struct {
		phase, file, want string
	}{
		{"R1", "cq_r1.json", "R1"},
		{"", "cq_r1.json", "-"},
		{"STRAY", "cq_stray.json", "STRAY"},
		{"MOPUP", "Stray_Vacancy.json", "MOPUP (stray)"},
	}
	for _, tt := range tests {
		if got := phaseText(models.CandidateRecord{Phase: tt.phase, FileName: tt.file}); got != tt.want {
			t.Errorf("phaseText(%q, %q) = %q, want %q", tt.phase, tt.file, got, tt.want)
		}
	}
}
