package prompts

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestBuildFilterPrompt(t *testing.T) {
	pb := NewPromptBuilder(Vocabulary{
		Years:    []string{"24", "23"},
		Colleges: []string{"OMC(001) - OSMANIA MEDICAL COLLEGE"},
	})
	p := pb.BuildFilterPrompt("ENT seats in 2024")

	for _, want := range []string{
		"ENT seats in 2024",
		"- years: 24, 23",
		"  * OMC(001) - OSMANIA MEDICAL COLLEGE",
		"- quotas: (none)",
		FilterExamples,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildErrorPrompt(t *testing.T) {
	p := NewPromptBuilder(Vocabulary{}).BuildErrorPrompt("ENT seats", errors.New("no records"))
	if !strings.Contains(p, `"ENT seats"`) || !strings.Contains(p, "no records") {
		t.Errorf("prompt = %q", p)
	}
}

func TestFindMatchingCourses(t *testing.T) {
	cm := NewCourseNameMatcher([]string{
		"ENT (017) - MS(ENT)",
		"PM (004) - MD(PM)",
		"GM (001) - MD(GM)",
		"RD (020) - MD(RD) RADIO-DIAGNOSIS",
		" ",
	})
	tests := []struct {
		q    string
		want []string
	}{
		{"seats in ENT (017) - MS(ENT) please", []string{"ENT (017) - MS(ENT)"}},
		{"ent(17) seats", []string{"ENT (017) - MS(ENT)"}},
		{"PM (4) and GM(1)", []string{"GM (001) - MD(GM)", "PM (004) - MD(PM)"}},
		{"patients with ent problems", []string{"ENT (017) - MS(ENT)"}},
		{"radiology seats", []string{"RD (020) - MD(RD) RADIO-DIAGNOSIS"}},
		{"general medicine", []string{"GM (001) - MD(GM)"}},
		{"patients only", nil},
	}
	for _, tt := range tests {
		if got := cm.FindMatchingCourses(tt.q); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("FindMatchingCourses(%q) = %v, want %v", tt.q, got, tt.want)
		}
	}
}
