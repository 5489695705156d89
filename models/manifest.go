package models

import (
	"encoding/json"
	"path"
)

// FileDescriptor is one entry of data_manifest.json.
type FileDescriptor struct {
	Path     string         `json:"path"`
	Year     string         `json:"year"`
	Category SourceCategory `json:"category"`
	Phase    string         `json:"phase,omitempty"`
}

func (f *FileDescriptor) UnmarshalJSON(b []byte) error {
	type plain FileDescriptor
	var aux struct {
		plain
		Year LooseString `json:"year"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*f = FileDescriptor(aux.plain)
	f.Year = string(aux.Year)
	return nil
}

// FileName is the base name of the file, used as provenance.
func (f FileDescriptor) FileName() string {
	return path.Base(f.Path)
}

// MeritDescriptor points at an exam-rank -> state-rank lookup file.
type MeritDescriptor struct {
	Path     string         `json:"path"`
	Year     string         `json:"year"`
	Category SourceCategory `json:"category"`
}

func (m *MeritDescriptor) UnmarshalJSON(b []byte) error {
	type plain MeritDescriptor
	var aux struct {
		plain
		Year LooseString `json:"year"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*m = MeritDescriptor(aux.plain)
	m.Year = string(aux.Year)
	return nil
}

// Manifest lists every data file the site publishes.
type Manifest struct {
	CounsellingFiles []FileDescriptor  `json:"counsellingFiles"`
	AllIndiaFiles    []FileDescriptor  `json:"aiqFiles,omitempty"`
	MeritFiles       []MeritDescriptor `json:"meritFiles,omitempty"`
}

// Files returns every counselling file in manifest order.
func (m Manifest) Files() []FileDescriptor {
	out := make([]FileDescriptor, 0, len(m.CounsellingFiles)+len(m.AllIndiaFiles))
	out = append(out, m.CounsellingFiles...)
	out = append(out, m.AllIndiaFiles...)
	return out
}

// FilesFor partitions the manifest by data source, keeping manifest order.
func (m Manifest) FilesFor(src DataSource) []FileDescriptor {
	var out []FileDescriptor
	for _, f := range m.Files() {
		if src.Includes(f.Category) {
			out = append(out, f)
		}
	}
	return out
}

// Matching returns the files of one year and category, in manifest order.
func (m Manifest) Matching(year string, category SourceCategory) []FileDescriptor {
	var out []FileDescriptor
	for _, f := range m.Files() {
		if f.Year == year && f.Category == category {
			out = append(out, f)
		}
	}
	return out
}
