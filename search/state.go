package search

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nonsonwune/counselling_db/models"
)

// DefaultStateFile is where the last search is kept between sessions.
const DefaultStateFile = ".counselling_state.yaml"

// State is the persisted part of a session: the chosen data source and the
// last filter selections. Only toggles are never persisted.
type State struct {
	Source     models.DataSource `yaml:"source"`
	MinRank    int               `yaml:"minRank,omitempty"`
	MaxRank    int               `yaml:"maxRank,omitempty"`
	Years      []string          `yaml:"years"`
	Quotas     []string          `yaml:"quotas"`
	Colleges   []string          `yaml:"colleges"`
	Courses    []string          `yaml:"courses"`
	Categories []string          `yaml:"categories"`
	Include    Include           `yaml:"include"`
	Male       bool              `yaml:"male"`
	Female     bool              `yaml:"female"`
	Sort       SortKey           `yaml:"sort"`
	Desc       bool              `yaml:"desc,omitempty"`
}

// StateFrom captures the persistent fields of a Spec.
func StateFrom(src models.DataSource, s Spec) State {
	return State{
		Source:     src,
		MinRank:    s.MinRank,
		MaxRank:    s.MaxRank,
		Years:      clone(s.Years),
		Quotas:     clone(s.Quotas),
		Colleges:   clone(s.Colleges),
		Courses:    clone(s.Courses),
		Categories: clone(s.Categories),
		Include:    s.Include,
		Male:       s.Male,
		Female:     s.Female,
		Sort:       s.Sort,
		Desc:       s.Desc,
	}
}

// Apply restores the saved fields onto base. Saved selections are kept only
// where the value still exists in opts, so a stale state cannot select a
// college that is no longer in the data.
func (st State) Apply(base Spec, opts Options) Spec {
	s := base
	s.MinRank = st.MinRank
	s.MaxRank = st.MaxRank
	s.Years = restrict(st.Years, opts.Years, s.Years)
	s.Quotas = restrict(st.Quotas, opts.Quotas, s.Quotas)
	s.Colleges = restrict(st.Colleges, opts.Colleges, s.Colleges)
	s.Courses = restrict(st.Courses, opts.Courses, s.Courses)
	s.Categories = restrict(st.Categories, opts.Categories, s.Categories)
	s.Include = st.Include
	s.Male = st.Male
	s.Female = st.Female
	if sk, err := ParseSortKey(string(st.Sort)); err == nil {
		s.Sort = sk
	}
	s.Desc = st.Desc
	s.ResetTransient()
	return s
}

// restrict keeps the saved values present in available. A nil saved group
// means the group was never saved; the fallback is used.
func restrict(saved, available, fallback []string) []string {
	if saved == nil {
		return fallback
	}
	ok := make(map[string]bool, len(available))
	for _, v := range available {
		ok[v] = true
	}
	out := []string{}
	for _, v := range saved {
		if ok[v] {
			out = append(out, v)
		}
	}
	return out
}

// LoadState reads the state file. A missing file returns ok=false and no
// error.
func LoadState(path string) (State, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("read search state: %w", err)
	}
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, false, fmt.Errorf("parse search state %s: %w", path, err)
	}
	return st, true, nil
}

// SaveState writes the state file, replacing it atomically.
func SaveState(path string, st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode search state: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("save search state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save search state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save search state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save search state: %w", err)
	}
	return nil
}
