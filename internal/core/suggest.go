package core

import (
	"strings"
	"unicode"
)

// SuggestMapping proposes a FieldMapping for the given headers.
//
// A header matches a field when their normalized forms are equal, trying the
// field name, then its label, then its aliases. Each header is used at most
// once and standard fields are matched before custom fields.
func SuggestMapping(headers []string, fields []CustomFieldDefinition) FieldMapping {
	byNorm := make(map[string]string, len(headers))
	for _, h := range headers {
		n := normalizeName(h)
		if n == "" {
			continue
		}
		if _, ok := byNorm[n]; !ok {
			byNorm[n] = h
		}
	}

	used := make(map[string]bool)
	mapping := make(FieldMapping)

	try := func(field string, candidates ...string) {
		for _, c := range candidates {
			h, ok := byNorm[normalizeName(c)]
			if ok && !used[h] {
				mapping[field] = h
				used[h] = true
				return
			}
		}
	}

	for _, f := range StandardFields {
		try(f.Name, append([]string{f.Name, f.Label}, f.Aliases...)...)
	}
	for _, f := range fields {
		try(f.FieldName, f.FieldName, f.FieldLabel)
	}

	return mapping
}

// normalizeName lowercases s and drops everything but letters and digits,
// so "E-mail Address", "email_address" and "EmailAddress" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// TemplateHeaders returns the header row of a blank import file for a job:
// the standard fields followed by the job's custom fields.
func TemplateHeaders(fields []CustomFieldDefinition) []string {
	headers := make([]string, 0, len(StandardFields)+len(fields))
	for _, f := range StandardFields {
		headers = append(headers, f.Name)
	}
	for _, f := range fields {
		headers = append(headers, f.FieldName)
	}
	return headers
}
