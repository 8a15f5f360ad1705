package core

import (
	"context"
	"io"
)

// AssembleOptions tunes preview assembly.
type AssembleOptions struct {
	PhonePolicy PhonePolicy
	MaxFileSize int64 // Zero disables the size check in ProcessFile
}

// AssemblePreviews builds one preview per data row, in row order.
// Rows that fail validation are kept with IsValid=false.
func AssemblePreviews(data CSVData, mapping FieldMapping, fields []CustomFieldDefinition, opts AssembleOptions) []CandidatePreview {
	headerIdx := MakeHeaderIndex(data.Headers)
	previews := make([]CandidatePreview, 0, len(data.Rows))

	for i := range data.Rows {
		acc := NewRowAccessor(data, headerIdx, mapping, i)

		p := CandidatePreview{
			RowIndex:       i,
			Name:           acc.Get(FieldName),
			Email:          acc.Get(FieldEmail),
			MobilePhone:    acc.Get(FieldMobilePhone),
			ResumeURL:      acc.Get(FieldResumeURL),
			Location:       acc.Get(FieldLocation),
			SalaryCurrency: acc.Get(FieldSalaryCurrency),
			CustomFields:   make(map[string]Value),
		}
		if i < len(data.Lines) {
			p.LineNumber = data.Lines[i]
		}

		if months, ok := CoerceExperienceMonths(acc.Get(FieldExperience)); ok {
			p.ExperienceMonths = &months
		}
		p.CurrentSalary = numericPtr(acc.Get(FieldCurrentSalary))
		p.ExpectedSalary = numericPtr(acc.Get(FieldExpectedSalary))
		p.AvailableToJoinDays = numericPtr(acc.Get(FieldAvailableToJoin))

		for _, f := range fields {
			if v, ok := Coerce(acc.Get(f.FieldName), f.FieldType); ok {
				p.CustomFields[f.FieldName] = v
			}
		}

		result := ValidateCandidate(p, fields, opts.PhonePolicy)
		p.IsValid = result.Valid
		p.Issues = result.Issues

		previews = append(previews, p)
	}

	return previews
}

func numericPtr(raw string) *float64 {
	if f, ok := CoerceNumeric(raw); ok {
		return &f
	}
	return nil
}

// ProcessFile runs the whole pipeline: read, parse, map, coerce, validate.
// The only errors are fatal ones (unreadable, too large or empty file); in
// that case no previews are returned.
func ProcessFile(ctx context.Context, r io.Reader, mapping FieldMapping, fields []CustomFieldDefinition, opts AssembleOptions) (CSVData, []CandidatePreview, error) {
	text, err := ReadText(ctx, r, opts.MaxFileSize)
	if err != nil {
		return CSVData{}, nil, err
	}

	data, err := ParseText(text)
	if err != nil {
		return CSVData{}, nil, err
	}

	return data, AssemblePreviews(data, mapping, fields, opts), nil
}

// Summarize counts valid and invalid previews.
func Summarize(previews []CandidatePreview) PreviewSummary {
	s := PreviewSummary{TotalRows: len(previews)}
	for _, p := range previews {
		if p.IsValid {
			s.ValidRows++
		} else {
			s.InvalidRows++
		}
	}
	return s
}
