package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/panbanda/paramlint/pkg/models"
)

// violationHeaders are the columns of the violations table.
var violationHeaders = []string{"File", "Line", "Column", "Parameter", "Kind", "Owner"}

// UnusedParameters builds the report for an analysis. Structured formats
// serialize the analysis itself.
func UnusedParameters(a *models.UnusedParameterAnalysis) *Report {
	r := &Report{
		Title: "Unused Parameters",
		Data:  a,
	}

	violations := a.Violations()
	if len(violations) > 0 {
		rows := make([][]string, len(violations))
		for i, v := range violations {
			rows[i] = []string{
				v.File,
				strconv.Itoa(v.Line),
				strconv.Itoa(v.Column),
				v.Name,
				string(v.Kind),
				v.Owner,
			}
		}
		footer := []string{fmt.Sprintf("%d violations", len(violations)), "", "", "", "", ""}
		r.Sections = append(r.Sections, NewTable("", violationHeaders, rows, footer, nil))
	}

	r.Sections = append(r.Sections, &Section{
		Title:   "Summary",
		Content: summaryText(a.Summary),
	})
	return r
}

func summaryText(s models.UnusedParameterSummary) string {
	var b strings.Builder
	if s.TotalViolations == 0 {
		b.WriteString("No unused parameters found.\n")
	}
	fmt.Fprintf(&b, "Files analyzed:    %d", s.TotalFiles)
	if s.SkippedFiles > 0 {
		fmt.Fprintf(&b, " (%d skipped)", s.SkippedFiles)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Parameters:        %d checked of %d\n", s.CheckedParameters, s.TotalParameters)
	fmt.Fprintf(&b, "Unused:            %d in %d files\n", s.TotalViolations, s.FilesWithViolations)
	fmt.Fprintf(&b, "Per file:          mean %.2f, stddev %.2f", s.MeanPerFile, s.StdDevPerFile)

	if len(s.ByKind) > 0 {
		kinds := make([]string, 0, len(s.ByKind))
		for k := range s.ByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		parts := make([]string, len(kinds))
		for i, k := range kinds {
			parts[i] = fmt.Sprintf("%s %d", k, s.ByKind[k])
		}
		fmt.Fprintf(&b, "\nBy kind:           %s", strings.Join(parts, ", "))
	}
	return b.String()
}

// Line formats a violation the way compilers report diagnostics.
func Line(v models.UnusedParameter) string {
	return fmt.Sprintf("%s:%d:%d: %s [%s]", v.File, v.Line, v.Column, v.Message, v.Key)
}
