package models

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/stat"
)

// ParameterKind identifies what declares an unused parameter.
type ParameterKind string

const (
	ParameterMethod      ParameterKind = "method"
	ParameterConstructor ParameterKind = "constructor"
	ParameterCatch       ParameterKind = "catch"
)

// UnusedParameter is a declared parameter that is never referenced.
type UnusedParameter struct {
	ID      string        `json:"id" toon:"id" yaml:"id"`
	Key     string        `json:"key" toon:"key" yaml:"key"`
	Name    string        `json:"name" toon:"name" yaml:"name"`
	File    string        `json:"file" toon:"file" yaml:"file"`
	Line    int           `json:"line" toon:"line" yaml:"line"`
	Column  int           `json:"column" toon:"column" yaml:"column"`
	Kind    ParameterKind `json:"kind" toon:"kind" yaml:"kind"`
	Owner   string        `json:"owner,omitempty" toon:"owner" yaml:"owner,omitempty"` // enclosing method or constructor name
	Message string        `json:"message" toon:"message" yaml:"message"`

	// Overload numbers same-named owners in the file in source order, and
	// Occurrence numbers same-named parameters within one owner. Both only
	// feed the fingerprint.
	Overload   int `json:"-" toon:"-" yaml:"-"`
	Occurrence int `json:"-" toon:"-" yaml:"-"`
}

// Fingerprint returns a stable identifier for the violation, derived from
// its file, owner, name and their ordinals. Line numbers are left out so
// the ID survives unrelated edits above the declaration.
func (p UnusedParameter) Fingerprint() string {
	h := xxhash.New()
	_, _ = h.WriteString(p.File)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(p.Owner)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strconv.Itoa(p.Overload))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(p.Name)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strconv.Itoa(p.Occurrence))
	return strconv.FormatUint(h.Sum64(), 16)
}

// FileUnusedParameters holds the result for one file.
type FileUnusedParameters struct {
	Path           string            `json:"path" toon:"path" yaml:"path"`
	Hash           string            `json:"hash,omitempty" toon:"hash" yaml:"hash,omitempty"`
	ParameterCount int               `json:"parameter_count" toon:"parameter_count" yaml:"parameter_count"`
	CheckedCount   int               `json:"checked_count" toon:"checked_count" yaml:"checked_count"`
	Violations     []UnusedParameter `json:"violations" toon:"violations" yaml:"violations"`
	Cached         bool              `json:"-" toon:"-" yaml:"-"`
}

// UnusedParameterSummary provides aggregate statistics.
type UnusedParameterSummary struct {
	TotalFiles          int            `json:"total_files" toon:"total_files" yaml:"total_files"`
	SkippedFiles        int            `json:"skipped_files" toon:"skipped_files" yaml:"skipped_files"`
	TotalParameters     int            `json:"total_parameters" toon:"total_parameters" yaml:"total_parameters"`
	CheckedParameters   int            `json:"checked_parameters" toon:"checked_parameters" yaml:"checked_parameters"`
	TotalViolations     int            `json:"total_violations" toon:"total_violations" yaml:"total_violations"`
	FilesWithViolations int            `json:"files_with_violations" toon:"files_with_violations" yaml:"files_with_violations"`
	MeanPerFile         float64        `json:"mean_per_file" toon:"mean_per_file" yaml:"mean_per_file"`
	StdDevPerFile       float64        `json:"stddev_per_file" toon:"stddev_per_file" yaml:"stddev_per_file"`
	ByKind              map[string]int `json:"by_kind" toon:"by_kind" yaml:"by_kind"`
}

// UnusedParameterAnalysis is the full result of a run.
type UnusedParameterAnalysis struct {
	Files   []FileUnusedParameters `json:"files" toon:"files" yaml:"files"`
	Summary UnusedParameterSummary `json:"summary" toon:"summary" yaml:"summary"`
}

// Violations returns every violation in file, line, column order.
func (a *UnusedParameterAnalysis) Violations() []UnusedParameter {
	var all []UnusedParameter
	for _, f := range a.Files {
		all = append(all, f.Violations...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].File != all[j].File {
			return all[i].File < all[j].File
		}
		if all[i].Line != all[j].Line {
			return all[i].Line < all[j].Line
		}
		return all[i].Column < all[j].Column
	})
	return all
}

// NewUnusedParameterAnalysis sorts files by path and computes the summary.
func NewUnusedParameterAnalysis(files []FileUnusedParameters, skipped int) *UnusedParameterAnalysis {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	s := UnusedParameterSummary{
		TotalFiles:   len(files),
		SkippedFiles: skipped,
		ByKind:       make(map[string]int),
	}
	perFile := make([]float64, 0, len(files))
	for _, f := range files {
		s.TotalParameters += f.ParameterCount
		s.CheckedParameters += f.CheckedCount
		s.TotalViolations += len(f.Violations)
		if len(f.Violations) > 0 {
			s.FilesWithViolations++
		}
		for _, v := range f.Violations {
			s.ByKind[string(v.Kind)]++
		}
		perFile = append(perFile, float64(len(f.Violations)))
	}
	if len(perFile) > 0 {
		s.MeanPerFile, s.StdDevPerFile = stat.MeanStdDev(perFile, nil)
	}
	if len(perFile) < 2 {
		s.StdDevPerFile = 0
	}

	return &UnusedParameterAnalysis{Files: files, Summary: s}
}
