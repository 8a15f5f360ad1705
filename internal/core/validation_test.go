package core

import (
	"reflect"
	"testing"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"asha@example.com", true},
		{"a.b+tag@sub.example.co", true},
		{"bad@", false},
		{"@x.io", false},
		{"no-at.example.com", false},
		{"two@@x.io", false},
		{"spa ce@x.io", false},
		{"a@nodot", false},
	}

	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"9876543210", true},
		{"+91 98765 43210", true},
		{"(987) 654-3210", true},
		{"+1-415-555-0100", true},
		{"12", false},
		{"123456789", false},
		{"0987654321", false},
		{"98765abc10", false},
		{"+", false},
		{"98.76543210", false},
	}

	for _, tt := range tests {
		if got := IsValidPhone(tt.phone); got != tt.want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestValidateCandidate(t *testing.T) {
	valid := CandidatePreview{Name: "Asha", Email: "asha@x.io", MobilePhone: "9876543210"}
	fields := []CustomFieldDefinition{
		{FieldName: "notice", FieldLabel: "Notice Period", FieldType: FieldNumber, IsRequired: true},
		{FieldName: "linkedin", FieldType: FieldURL, IsRequired: true},
		{FieldName: "hobby", FieldType: FieldText},
	}

	tests := []struct {
		name   string
		c      CandidatePreview
		fields []CustomFieldDefinition
		policy PhonePolicy
		want   []string
	}{
		{
			name: "valid row",
			c:    valid,
			want: []string{},
		},
		{
			name: "phone optional when absent",
			c:    CandidatePreview{Name: "Asha", Email: "asha@x.io"},
			want: []string{},
		},
		{
			name:   "phone required when absent",
			c:      CandidatePreview{Name: "Asha", Email: "asha@x.io"},
			policy: PhoneRequired,
			want:   []string{IssuePhoneRequired},
		},
		{
			name: "issues in check order",
			c:    CandidatePreview{Name: " ", Email: "bad@", MobilePhone: "12"},
			want: []string{IssueNameRequired, IssueInvalidEmail, IssueInvalidPhone},
		},
		{
			name: "missing email",
			c:    CandidatePreview{Name: "Asha"},
			want: []string{IssueEmailRequired},
		},
		{
			name: "negative numbers",
			c: CandidatePreview{
				Name: "Asha", Email: "asha@x.io",
				ExperienceMonths:    intPtr(-1),
				CurrentSalary:       floatPtr(-1),
				ExpectedSalary:      floatPtr(-1),
				AvailableToJoinDays: floatPtr(-1),
			},
			want: []string{IssueNegativeExperience, IssueNegativeCurrentSalary, IssueNegativeExpected, IssueNegativeDaysToJoin},
		},
		{
			name: "zero is not negative",
			c: CandidatePreview{
				Name: "Asha", Email: "asha@x.io",
				ExperienceMonths: intPtr(0),
				CurrentSalary:    floatPtr(0),
			},
			want: []string{},
		},
		{
			name:   "required custom fields use label",
			c:      CandidatePreview{Name: "Asha", Email: "asha@x.io"},
			fields: fields,
			want:   []string{"Notice Period is required", "linkedin is required"},
		},
		{
			name: "required custom field present",
			c: CandidatePreview{
				Name: "Asha", Email: "asha@x.io",
				CustomFields: map[string]Value{"notice": NumberValue(30), "linkedin": TextValue("x")},
			},
			fields: fields,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateCandidate(tt.c, tt.fields, tt.policy)
			if !reflect.DeepEqual(got.Issues, tt.want) {
				t.Errorf("Issues = %q, want %q", got.Issues, tt.want)
			}
			if got.Valid != (len(tt.want) == 0) {
				t.Errorf("Valid = %v with %d issues", got.Valid, len(got.Issues))
			}
		})
	}
}

func TestParsePhonePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    PhonePolicy
		wantErr bool
	}{
		{"", PhoneOptional, false},
		{"optional", PhoneOptional, false},
		{" Required ", PhoneRequired, false},
		{"sometimes", PhoneOptional, true},
	}

	for _, tt := range tests {
		got, err := ParsePhonePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePhonePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
