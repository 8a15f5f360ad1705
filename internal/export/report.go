// Package export renders import previews as spreadsheets.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/candidate-import/internal/core"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the issues report.
const (
	SummarySheet = "Summary"
	RowsSheet    = "Rows"
)

var rowColumns = []string{
	"Row", "Line", "Status", "Issues",
	"Name", "Email", "Mobile Phone", "Resume URL", "Location",
	"Experience (months)", "Current Salary", "Expected Salary", "Salary Currency", "Available To Join (days)",
}

// WriteIssuesReport writes an XLSX workbook describing a preview: a summary
// sheet and one line per row with its status, issues and mapped values.
// Invalid rows are highlighted.
func WriteIssuesReport(w io.Writer, resp *core.PreviewResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(RowsSheet); err != nil {
		return err
	}

	if err := writeSummary(f, resp); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeRows(f, resp.Previews); err != nil {
		return fmt.Errorf("rows sheet: %w", err)
	}

	return f.Write(w)
}

func writeSummary(f *excelize.File, resp *core.PreviewResponse) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	lines := [][2]any{
		{"Import ID", resp.ImportID},
		{"Job", resp.JobID},
		{"File", resp.FileName},
		{"Generated", time.Now().UTC().Format(time.RFC3339)},
		{"Total rows", resp.Summary.TotalRows},
		{"Valid rows", resp.Summary.ValidRows},
		{"Invalid rows", resp.Summary.InvalidRows},
	}
	for i, l := range lines {
		row := i + 1
		if err := f.SetCellValue(SummarySheet, "A"+strconv.Itoa(row), l[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(SummarySheet, "B"+strconv.Itoa(row), l[1]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "A"+strconv.Itoa(len(lines)), bold); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "A", "B", 28)
}

func writeRows(f *excelize.File, previews []core.CandidatePreview) error {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	invalid, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F8CBAD"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	customNames := customFieldNames(previews)
	columns := append(append([]string{}, rowColumns...), customNames...)

	if err := setRow(f, 1, toAny(columns)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(RowsSheet, "A1", last, header); err != nil {
		return err
	}

	for i, p := range previews {
		r := i + 2
		status := "Valid"
		if !p.IsValid {
			status = "Invalid"
		}
		values := []any{
			p.RowIndex + 1, p.LineNumber, status, strings.Join(p.Issues, "; "),
			p.Name, p.Email, p.MobilePhone, p.ResumeURL, p.Location,
			intOrBlank(p.ExperienceMonths), floatOrBlank(p.CurrentSalary), floatOrBlank(p.ExpectedSalary),
			p.SalaryCurrency, floatOrBlank(p.AvailableToJoinDays),
		}
		for _, name := range customNames {
			if v, ok := p.CustomFields[name]; ok {
				values = append(values, v.String())
			} else {
				values = append(values, "")
			}
		}
		if err := setRow(f, r, values); err != nil {
			return err
		}
		if !p.IsValid {
			from, _ := excelize.CoordinatesToCellName(1, r)
			to, _ := excelize.CoordinatesToCellName(len(columns), r)
			if err := f.SetCellStyle(RowsSheet, from, to, invalid); err != nil {
				return err
			}
		}
	}

	if err := f.SetPanes(RowsSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}
	return f.SetColWidth(RowsSheet, "D", "D", 48)
}

func setRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(RowsSheet, cell, &values)
}

// customFieldNames returns every custom field name present in any row, sorted.
func customFieldNames(previews []core.CandidatePreview) []string {
	seen := make(map[string]bool)
	for _, p := range previews {
		for name := range p.CustomFields {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func intOrBlank(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}

func floatOrBlank(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}
