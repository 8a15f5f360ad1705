package core

// validation.go checks an assembled candidate row.
//
// Checks run in a fixed order (name, email, phone, numeric fields, required
// custom fields) and every failing check adds an issue, so one row can carry
// several issues. A row is valid only when it has none.

import (
	"fmt"
	"regexp"
	"strings"
)

// PhonePolicy controls whether a mobile phone is mandatory.
type PhonePolicy int

const (
	// PhoneOptional validates the phone format only when a phone is present.
	PhoneOptional PhonePolicy = iota
	// PhoneRequired additionally reports a missing phone.
	PhoneRequired
)

// ParsePhonePolicy converts a configuration string to a PhonePolicy.
func ParsePhonePolicy(s string) (PhonePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "optional":
		return PhoneOptional, nil
	case "required":
		return PhoneRequired, nil
	default:
		return PhoneOptional, fmt.Errorf("unknown phone policy %q", s)
	}
}

func (p PhonePolicy) String() string {
	if p == PhoneRequired {
		return "required"
	}
	return "optional"
}

// Issue messages shown to the operator.
const (
	IssueNameRequired          = "Name is required"
	IssueEmailRequired         = "Email is required"
	IssueInvalidEmail          = "Invalid email format"
	IssuePhoneRequired         = "Mobile phone is required"
	IssueInvalidPhone          = "Invalid phone format"
	IssueNegativeExperience    = "Experience cannot be negative"
	IssueNegativeCurrentSalary = "Current salary cannot be negative"
	IssueNegativeExpected      = "Expected salary cannot be negative"
	IssueNegativeDaysToJoin    = "Available to join days cannot be negative"
)

var (
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneStripRegex = regexp.MustCompile(`[\s\-()]`)
	phoneRegex      = regexp.MustCompile(`^\+?[1-9]\d*$`)
)

// minPhoneDigits is the shortest accepted phone number.
const minPhoneDigits = 10

// ValidationResult contains the result of validating a row.
type ValidationResult struct {
	Valid  bool
	Issues []string
}

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidPhone reports whether s is an acceptable phone number once spaces,
// hyphens and parentheses are removed.
func IsValidPhone(s string) bool {
	cleaned := phoneStripRegex.ReplaceAllString(s, "")
	if !phoneRegex.MatchString(cleaned) {
		return false
	}
	return len(strings.TrimPrefix(cleaned, "+")) >= minPhoneDigits
}

// ValidateCandidate checks a partially assembled candidate.
// fields lists the job's custom field definitions; required ones without a
// value in c.CustomFields are reported after the standard checks.
func ValidateCandidate(c CandidatePreview, fields []CustomFieldDefinition, policy PhonePolicy) ValidationResult {
	issues := make([]string, 0)

	if strings.TrimSpace(c.Name) == "" {
		issues = append(issues, IssueNameRequired)
	}

	email := strings.TrimSpace(c.Email)
	if email == "" {
		issues = append(issues, IssueEmailRequired)
	} else if !IsValidEmail(email) {
		issues = append(issues, IssueInvalidEmail)
	}

	phone := strings.TrimSpace(c.MobilePhone)
	if phone == "" {
		if policy == PhoneRequired {
			issues = append(issues, IssuePhoneRequired)
		}
	} else if !IsValidPhone(phone) {
		issues = append(issues, IssueInvalidPhone)
	}

	if c.ExperienceMonths != nil && *c.ExperienceMonths < 0 {
		issues = append(issues, IssueNegativeExperience)
	}
	if c.CurrentSalary != nil && *c.CurrentSalary < 0 {
		issues = append(issues, IssueNegativeCurrentSalary)
	}
	if c.ExpectedSalary != nil && *c.ExpectedSalary < 0 {
		issues = append(issues, IssueNegativeExpected)
	}
	if c.AvailableToJoinDays != nil && *c.AvailableToJoinDays < 0 {
		issues = append(issues, IssueNegativeDaysToJoin)
	}

	for _, f := range fields {
		if !f.IsRequired {
			continue
		}
		if _, ok := c.CustomFields[f.FieldName]; !ok {
			issues = append(issues, f.Label()+" is required")
		}
	}

	return ValidationResult{
		Valid:  len(issues) == 0,
		Issues: issues,
	}
}
