package importer

import "testing"

func TestPhaseRank(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"STRAY", PhaseStray},
		{"Stray Vacancy Round", PhaseStray},
		{"MOPUP", PhaseMopUp},
		{"Mop-Up", PhaseMopUp},
		{"mop up round", PhaseMopUp},
		{"R3", PhaseRound3},
		{"R2", PhaseRound2},
		{"r1", PhaseRound1},
		{"Round 2", PhaseRound2},
		{"3rd Round", PhaseRound3},
		{"P2", PhaseRound2},
		{"phase 7", PhaseRound3},
		{"R10", PhaseRound3},
		{"final 1", PhaseRound1},
		{"", PhaseUnknown},
		{"   ", PhaseUnknown},
		{"unknown", PhaseUnknown},
	}
	for _, tt := range tests {
		if got := PhaseRank(tt.label); got != tt.want {
			t.Errorf("PhaseRank(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestPhaseRankOrder(t *testing.T) {
	order := []string{"", "R1", "R2", "R3", "MOPUP", "STRAY"}
	for i := 1; i < len(order); i++ {
		lo, hi := PhaseRank(order[i-1]), PhaseRank(order[i])
		if lo >= hi {
			t.Errorf("PhaseRank(%q)=%d should be below PhaseRank(%q)=%d", order[i-1], lo, order[i], hi)
		}
	}
	if PhaseRank("STRAY") != 5 || PhaseRank("") != 0 {
		t.Errorf("unexpected bounds: STRAY=%d empty=%d", PhaseRank("STRAY"), PhaseRank(""))
	}
}

func TestPhaseLabel(t *testing.T) {
	tests := map[string]string{
		"data/aiq/24/aiq_round_3.json": "R3",
		"data/aiq/24/stray.json":       "STRAY",
		"data/aiq/24/mop-up.json":      "MOPUP",
		"2nd round":                    "R2",
		"data/aiq/24/aiq_list.json":    "",
		"":                             "",
	}
	for in, want := range tests {
		if got := phaseLabel(in); got != want {
			t.Errorf("phaseLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
