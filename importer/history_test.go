package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/nonsonwune/counselling_db/models"
)

func TestResolveHistory(t *testing.T) {
	r := NewResolver(newMemFetcher(testFiles()), "", discard)
	got, err := r.Resolve(context.Background(), 19566, "24", models.StateCounselling)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []struct {
		phase   string
		college string
		file    string
	}{
		{"R1", "A(001) - COLLEGE A", "cq_r1.json"},
		{"MOPUP", "D(004) - COLLEGE D", "cq_mopup.json"},
		{"STRAY", "B(002) - COLLEGE B", "cq_stray.json"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		e := got[i]
		if e.Phase != w.phase || e.College != w.college || e.FileName != w.file {
			t.Errorf("entry %d = %+v, want %s at %s from %s", i, e, w.phase, w.college, w.file)
		}
		if e.Year != "24" || e.Category != models.StateCounselling || e.Rank != 19566 {
			t.Errorf("entry %d identity = %+v", i, e)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].PhaseRank > got[i].PhaseRank {
			t.Errorf("entries not ascending by round: %+v", got)
		}
	}
}

func TestResolveHistoryNotFound(t *testing.T) {
	r := NewResolver(newMemFetcher(testFiles()), DefaultManifestPath, discard)
	got, err := r.Resolve(context.Background(), 1, "24", models.StateCounselling)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want an empty non-nil slice", got)
	}
}

func TestResolveHistorySkipsBrokenFiles(t *testing.T) {
	f := newMemFetcher(testFiles())
	f.fail["data/24/cq_stray.json"] = true
	f.files["data/24/cq_mopup.json"] = "{"
	got, err := NewResolver(f, "", discard).Resolve(context.Background(), 19566, "24", models.StateCounselling)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || got[0].Phase != "R1" {
		t.Errorf("got %+v, want only the R1 entry", got)
	}
}

func TestResolveHistoryManifestError(t *testing.T) {
	_, err := NewResolver(newMemFetcher(map[string]string{}), "", discard).
		Resolve(context.Background(), 19566, "24", models.StateCounselling)
	if !errors.Is(err, ErrManifest) {
		t.Errorf("err = %v, want ErrManifest", err)
	}
}
