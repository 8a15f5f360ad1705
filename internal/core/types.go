// Package core provides the business logic for candidate CSV imports.
// This package has no UI dependencies and can be used by any frontend.
package core

import "time"

// Logical ATS field names. A FieldMapping is keyed by these plus the names
// of the job opening's custom fields.
const (
	FieldName            = "Name"
	FieldEmail           = "Email"
	FieldMobilePhone     = "Mobile Phone"
	FieldResumeURL       = "Resume URL"
	FieldExperience      = "Experience"
	FieldCurrentSalary   = "Current Salary"
	FieldExpectedSalary  = "Expected Salary"
	FieldSalaryCurrency  = "Salary Currency"
	FieldAvailableToJoin = "Available To Join"
	FieldLocation        = "Location"
)

// StandardField describes one of the fixed logical fields of a candidate.
type StandardField struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Required    bool     `json:"required"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"` // Alternate header spellings used by SuggestMapping
}

// StandardFields lists the fixed logical fields in display order.
var StandardFields = []StandardField{
	{Name: FieldName, Label: "Full name", Required: true, Aliases: []string{"Full Name", "Candidate Name", "Candidate"}},
	{Name: FieldEmail, Label: "Email", Required: true, Aliases: []string{"Email Address", "E-mail", "Mail"}},
	{Name: FieldMobilePhone, Label: "Mobile phone", Aliases: []string{"Phone", "Mobile", "Phone Number", "Contact Number", "Cell"}},
	{Name: FieldResumeURL, Label: "Resume URL", Aliases: []string{"Resume", "CV", "CV URL", "Resume Link"}},
	{Name: FieldExperience, Label: "Experience (years)", Description: "Converted to months", Aliases: []string{"Years of Experience", "Experience Years", "Total Experience"}},
	{Name: FieldCurrentSalary, Label: "Current salary", Aliases: []string{"Current CTC", "Salary"}},
	{Name: FieldExpectedSalary, Label: "Expected salary", Aliases: []string{"Expected CTC"}},
	{Name: FieldSalaryCurrency, Label: "Salary currency", Aliases: []string{"Currency"}},
	{Name: FieldAvailableToJoin, Label: "Available to join (days)", Aliases: []string{"Notice Period", "Days to Join", "Joining Days"}},
	{Name: FieldLocation, Label: "Location", Aliases: []string{"City", "Current Location"}},
}

// FieldType is the declared type of a custom field. Types arrive as data
// from the job opening configuration.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldTextarea    FieldType = "textarea"
	FieldNumber      FieldType = "number"
	FieldDecimal     FieldType = "decimal"
	FieldBoolean     FieldType = "boolean"
	FieldDate        FieldType = "date"
	FieldEmailType   FieldType = "email"
	FieldURL         FieldType = "url"
	FieldSelect      FieldType = "select"
	FieldMultiselect FieldType = "multiselect"
)

// CustomFieldDefinition describes a dynamically configured candidate attribute.
type CustomFieldDefinition struct {
	FieldName  string    `json:"field_name"`
	FieldLabel string    `json:"field_label"`
	FieldType  FieldType `json:"field_type"`
	IsRequired bool      `json:"is_required"`
	Options    []string  `json:"options,omitempty"` // Allowed values for select/multiselect (informational)
}

// Label returns the display label, falling back to the field name.
func (d CustomFieldDefinition) Label() string {
	if d.FieldLabel != "" {
		return d.FieldLabel
	}
	return d.FieldName
}

// FieldMapping maps a logical field name to a CSV header.
type FieldMapping map[string]string

// CSVData is a parsed file: unique headers and rows aligned positionally.
// Rows may be shorter than Headers; missing cells read as empty.
type CSVData struct {
	Headers []string
	Rows    [][]string
	Lines   []int // 1-based source line of each row
}

// HeaderIndex maps header text to its column position.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from normalized headers.
// Headers are unique after normalization so the mapping is exact.
func MakeHeaderIndex(headers []string) HeaderIndex {
	idx := make(HeaderIndex, len(headers))
	for i, h := range headers {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

// CandidatePreview is the validated, typed form of one data row.
// Pointer fields are nil when the row carried no value.
type CandidatePreview struct {
	RowIndex   int `json:"rowIndex"`
	LineNumber int `json:"lineNumber"`

	Name        string `json:"name"`
	Email       string `json:"email"`
	MobilePhone string `json:"mobilePhone,omitempty"`
	ResumeURL   string `json:"resumeUrl,omitempty"`
	Location    string `json:"location,omitempty"`

	ExperienceMonths    *int     `json:"experienceMonths,omitempty"`
	CurrentSalary       *float64 `json:"currentSalary,omitempty"`
	ExpectedSalary      *float64 `json:"expectedSalary,omitempty"`
	SalaryCurrency      string   `json:"salaryCurrency,omitempty"`
	AvailableToJoinDays *float64 `json:"availableToJoinDays,omitempty"`

	CustomFields map[string]Value `json:"customFields"`

	IsValid bool     `json:"isValid"`
	Issues  []string `json:"issues"`
}

// PreviewSummary contains the summary counts for an import preview.
type PreviewSummary struct {
	TotalRows   int `json:"totalRows"`
	ValidRows   int `json:"validRows"`
	InvalidRows int `json:"invalidRows"`
}

// PreviewResponse is the result of PreviewImport.
type PreviewResponse struct {
	ImportID         string             `json:"importId"`
	JobID            string             `json:"jobId"`
	FileName         string             `json:"fileName"`
	Headers          []string           `json:"headers"`
	Summary          PreviewSummary     `json:"summary"`
	Previews         []CandidatePreview `json:"previews"`
	ExpiresAt        time.Time          `json:"expiresAt"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}

// CommitResult contains the outcome of committing an import session.
type CommitResult struct {
	ImportID string        `json:"importId"`
	JobID    string        `json:"jobId"`
	Inserted int64         `json:"inserted"`
	Skipped  int           `json:"skipped"`  // Invalid, excluded and duplicate rows
	Excluded []int         `json:"excluded"` // Row indexes excluded by the caller
	// Duplicates are row indexes whose email repeats an earlier row or an
	// existing candidate of the job.
	Duplicates []int         `json:"duplicates,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// ImportTemplate is a saved field mapping for a job opening.
type ImportTemplate struct {
	ID         string       `json:"id"`
	JobID      string       `json:"jobId"`
	Name       string       `json:"name"`
	Mapping    FieldMapping `json:"mapping"`
	CSVHeaders []string     `json:"csvHeaders"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// TemplateMatch is a template scored against a file's headers.
type TemplateMatch struct {
	Template   ImportTemplate `json:"template"`
	MatchScore float64        `json:"matchScore"`
}
