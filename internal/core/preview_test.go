package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestProcessFile_EndToEnd(t *testing.T) {
	csv := "Full Name,E-mail,Phone,Years,CTC,Skills\n" +
		"Asha Rao,asha@example.com,+91 98765 43210,5,\"₹12,00,000\",\"Go, SQL\"\n" +
		",bad@,12,,,\n"
	mapping := FieldMapping{
		FieldName:          "Full Name",
		FieldEmail:         "E-mail",
		FieldMobilePhone:   "Phone",
		FieldExperience:    "Years",
		FieldCurrentSalary: "CTC",
		"skills":           "Skills",
	}
	fields := []CustomFieldDefinition{{FieldName: "skills", FieldType: FieldMultiselect}}

	data, previews, err := ProcessFile(context.Background(), strings.NewReader(csv), mapping, fields, AssembleOptions{})
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if len(data.Headers) != 6 {
		t.Errorf("Headers = %q", data.Headers)
	}
	if len(previews) != 2 {
		t.Fatalf("len(previews) = %d, want 2", len(previews))
	}

	first := previews[0]
	if !first.IsValid || len(first.Issues) != 0 {
		t.Errorf("first row should be valid, issues = %q", first.Issues)
	}
	if first.ExperienceMonths == nil || *first.ExperienceMonths != 60 {
		t.Errorf("ExperienceMonths = %v, want 60", first.ExperienceMonths)
	}
	if first.CurrentSalary == nil || *first.CurrentSalary != 1200000 {
		t.Errorf("CurrentSalary = %v, want 1200000", first.CurrentSalary)
	}
	if got := first.CustomFields["skills"]; !reflect.DeepEqual(got, ListValue([]string{"Go", "SQL"})) {
		t.Errorf("skills = %#v", got)
	}
	if first.RowIndex != 0 || first.LineNumber != 2 {
		t.Errorf("RowIndex, LineNumber = %d, %d, want 0, 2", first.RowIndex, first.LineNumber)
	}

	second := previews[1]
	wantIssues := []string{IssueNameRequired, IssueInvalidEmail, IssueInvalidPhone}
	if second.IsValid || !reflect.DeepEqual(second.Issues, wantIssues) {
		t.Errorf("second row issues = %q, want %q", second.Issues, wantIssues)
	}
	if _, ok := second.CustomFields["skills"]; ok {
		t.Error("blank custom field should be omitted")
	}
	if second.ExperienceMonths != nil || second.CurrentSalary != nil {
		t.Error("blank numeric fields should be nil")
	}
}

func TestProcessFile_PhoneRequired(t *testing.T) {
	csv := "Name,Email\nAsha,asha@x.io\n"
	mapping := FieldMapping{FieldName: "Name", FieldEmail: "Email"}

	_, previews, err := ProcessFile(context.Background(), strings.NewReader(csv), mapping, nil, AssembleOptions{PhonePolicy: PhoneRequired})
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if !reflect.DeepEqual(previews[0].Issues, []string{IssuePhoneRequired}) {
		t.Errorf("Issues = %q", previews[0].Issues)
	}
}

func TestProcessFile_FatalErrors(t *testing.T) {
	ctx := context.Background()

	if _, _, err := ProcessFile(ctx, strings.NewReader("\n \n"), nil, nil, AssembleOptions{}); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("blank file error = %v, want ErrEmptyFile", err)
	}

	_, previews, err := ProcessFile(ctx, strings.NewReader("Name\nAsha\n"), nil, nil, AssembleOptions{MaxFileSize: 4})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("oversized file error = %v, want ErrFileTooLarge", err)
	}
	if previews != nil {
		t.Error("no previews expected on fatal error")
	}
}

func TestAssemblePreviews_OrderAndCount(t *testing.T) {
	data := CSVData{
		Headers: []string{"Name", "Email"},
		Rows:    [][]string{{"A", "a@x.io"}, {"B", "nope"}, {"C", "c@x.io"}},
	}
	mapping := FieldMapping{FieldName: "Name", FieldEmail: "Email"}

	previews := AssemblePreviews(data, mapping, nil, AssembleOptions{})
	if len(previews) != len(data.Rows) {
		t.Fatalf("len = %d, want %d", len(previews), len(data.Rows))
	}
	for i, p := range previews {
		if p.RowIndex != i {
			t.Errorf("previews[%d].RowIndex = %d", i, p.RowIndex)
		}
		if p.IsValid != (len(p.Issues) == 0) {
			t.Errorf("previews[%d] IsValid = %v with issues %q", i, p.IsValid, p.Issues)
		}
	}

	summary := Summarize(previews)
	if summary != (PreviewSummary{TotalRows: 3, ValidRows: 2, InvalidRows: 1}) {
		t.Errorf("Summarize() = %+v", summary)
	}
}

func TestAssemblePreviews_Idempotent(t *testing.T) {
	data, err := ParseText("Name,Email,Exp\nAsha,asha@x.io,2.5\nRavi,,x\n")
	if err != nil {
		t.Fatal(err)
	}
	mapping := FieldMapping{FieldName: "Name", FieldEmail: "Email", FieldExperience: "Exp"}

	a := AssemblePreviews(data, mapping, nil, AssembleOptions{})
	b := AssemblePreviews(data, mapping, nil, AssembleOptions{})
	if !reflect.DeepEqual(a, b) {
		t.Error("AssemblePreviews is not deterministic")
	}
}

func TestAssemblePreviews_HugeExperienceIsAbsent(t *testing.T) {
	data := CSVData{
		Headers: []string{"Name", "Email", "Years"},
		Rows:    [][]string{{"Asha", "asha@x.io", "1000000000000000000000"}},
	}
	mapping := FieldMapping{FieldName: "Name", FieldEmail: "Email", FieldExperience: "Years"}

	p := AssemblePreviews(data, mapping, nil, AssembleOptions{})[0]
	if !p.IsValid || len(p.Issues) != 0 {
		t.Errorf("IsValid = %v, Issues = %q, want a valid row", p.IsValid, p.Issues)
	}
	if p.ExperienceMonths != nil {
		t.Errorf("ExperienceMonths = %d, want nil", *p.ExperienceMonths)
	}
}
