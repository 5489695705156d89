package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nonsonwune/counselling_db/models"
	"github.com/nonsonwune/counselling_db/search"
)

func renderResults(w io.Writer, res search.Result, src models.DataSource) {
	count := fmt.Sprintf("Found %d results", res.Total)
	if res.Truncated() {
		count += fmt.Sprintf(" (showing first %d)", len(res.Records))
	}
	color.New(color.FgYellow).Fprintln(w, "\n"+count)
	if len(res.Records) == 0 {
		fmt.Fprintln(w, "No results found")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	if src == models.SourceAllIndia {
		table.SetHeader([]string{"Rank", "Year", "Quota", "Institute", "Course", "Allotted", "Candidate", "PH", "Phase"})
		for _, r := range res.Records {
			table.Append([]string{
				strconv.Itoa(r.Rank),
				r.Year,
				r.AdmissionType,
				r.College,
				r.Course,
				r.AllottedCategory,
				r.CandidateCategory,
				mark(r.IsPH),
				phaseText(r),
			})
		}
		table.Render()
		return
	}

	table.SetHeader([]string{"Rank", "Year", "College", "Course", "Quota", "Category", "Gender", "Status", "Phase"})
	for _, r := range res.Records {
		table.Append([]string{
			strconv.Itoa(r.Rank),
			r.Year,
			models.CollegeAbbreviation(r.College),
			r.Course,
			search.QuotaLabel(r.AdmissionType),
			r.AllottedCategory,
			search.GenderLabel(r.Gender),
			statusText(r),
			phaseText(r),
		})
	}
	table.Render()
}

func renderHistory(w io.Writer, rank int, year string, category models.SourceCategory, entries []models.HistoryEntry) {
	color.New(color.FgCyan).Fprintf(w, "\nRank %d History (%s %s)\n", rank, year, category)
	if len(entries) == 0 {
		fmt.Fprintln(w, "No admission history found for this rank.")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Phase", "College", "Course", "Quota", "File"})
	for _, e := range entries {
		phase := e.Phase
		if phase == "" {
			phase = "N/A"
		}
		table.Append([]string{phase, e.College, e.Course, search.QuotaLabel(e.AdmissionType), e.FileName})
	}
	table.Render()
}

func renderMerit(w io.Writer, m models.MeritRank) {
	if m.Approximate {
		color.New(color.FgYellow).Fprintf(w, "\nExam rank %d: state rank ~%d (nearest listed rank %d)\n",
			m.ExamRank, m.StateRank, m.MatchedRank)
		return
	}
	color.New(color.FgGreen).Fprintf(w, "\nExam rank %d: state rank %d\n", m.ExamRank, m.StateRank)
}

func renderOptions(w io.Writer, opts search.Options) {
	groups := []struct {
		label  string
		values []string
	}{
		{"Years", opts.Years},
		{"Quotas", opts.Quotas},
		{"Categories", opts.Categories},
		{"Colleges", opts.Colleges},
		{"Courses", opts.Courses},
	}
	for _, g := range groups {
		color.New(color.FgYellow).Fprintf(w, "\n%s (%d)\n", g.label, len(g.values))
		for _, v := range g.values {
			fmt.Fprintln(w, "  "+v)
		}
	}
}

func statusText(r models.CandidateRecord) string {
	var parts []string
	if r.IsPH {
		parts = append(parts, "PH")
	}
	if r.IsMIN {
		parts = append(parts, "MIN")
	}
	if r.IsMRC {
		parts = append(parts, "MRC")
	}
	if r.IsLocal {
		parts = append(parts, "LOC")
	}
	return strings.Join(parts, " ")
}

func phaseText(r models.CandidateRecord) string {
	phase := r.Phase
	if phase == "" {
		phase = "-"
	}
	if r.IsStray() && !strings.EqualFold(phase, "STRAY") {
		phase += " (stray)"
	}
	return phase
}

func mark(b bool) string {
	if b {
		return "Y"
	}
	return ""
}
