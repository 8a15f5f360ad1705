package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/candidate-import/internal/core"
)

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	err := ErrorAlert(core.UserMessage{Message: "Bad <file>", Action: "Retry", Code: "FILE003"}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Bad &lt;file&gt;") {
		t.Errorf("message not escaped: %s", out)
	}
	if !strings.Contains(out, `data-code="FILE003"`) || !strings.Contains(out, "Retry") {
		t.Errorf("ErrorAlert() = %s", out)
	}
}

func TestPreviewTable(t *testing.T) {
	resp := &core.PreviewResponse{
		ImportID: "imp-1",
		Summary:  core.PreviewSummary{TotalRows: 2, ValidRows: 1, InvalidRows: 1},
		Previews: []core.CandidatePreview{
			{RowIndex: 0, Name: "Asha", Email: "asha@x.io", IsValid: true},
			{RowIndex: 1, Name: "<script>", Issues: []string{core.IssueEmailRequired}},
		},
	}

	var buf bytes.Buffer
	if err := PreviewTable(resp).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`data-import-id="imp-1"`,
		`<span class="valid">1 valid</span>`,
		`class="row-invalid" data-row="1"`,
		"<li>Email is required</li>",
		"&lt;script&gt;",
		`hx-post="/api/imports/imp-1/commit"`,
		`href="/api/imports/imp-1/report.xlsx"`,
		"Import 1 valid row",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("PreviewTable() missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("PreviewTable() rendered unescaped name")
	}
}

func TestPreviewTable_NoValidRows(t *testing.T) {
	var buf bytes.Buffer
	resp := &core.PreviewResponse{ImportID: "imp-2", Summary: core.PreviewSummary{TotalRows: 1, InvalidRows: 1}}
	if err := PreviewTable(resp).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "hx-post") {
		t.Error("commit button shown without valid rows")
	}
}

func TestCommitResult(t *testing.T) {
	var buf bytes.Buffer
	if err := CommitResult(&core.CommitResult{Inserted: 3, Skipped: 1}).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Imported 3 candidates. Skipped 1.") {
		t.Errorf("CommitResult() = %s", buf.String())
	}
}

func TestCommitResult_Duplicates(t *testing.T) {
	var buf bytes.Buffer
	res := &core.CommitResult{Inserted: 1, Skipped: 2, Duplicates: []int{1, 4}}
	if err := CommitResult(res).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Imported 1 candidate. Skipped 2.") {
		t.Errorf("CommitResult() = %s", out)
	}
	if !strings.Contains(out, "Duplicate emails on rows 2, 5.") {
		t.Errorf("CommitResult() missing duplicates: %s", out)
	}
}

func TestRowNumbers(t *testing.T) {
	tests := []struct {
		in   []int
		want string
	}{
		{nil, ""},
		{[]int{0}, "1"},
		{[]int{2, 9}, "3, 10"},
	}
	for _, tt := range tests {
		if got := rowNumbers(tt.in); got != tt.want {
			t.Errorf("rowNumbers(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
