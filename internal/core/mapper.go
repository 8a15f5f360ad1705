package core

import "strings"

// RowAccessor reads mapped field values from one data row.
// It is cheap to build and holds no state beyond the row it points at.
type RowAccessor struct {
	row       []string
	headerIdx HeaderIndex
	mapping   FieldMapping
}

// NewRowAccessor creates an accessor for data.Rows[row]. An out of range row
// yields an accessor that returns "" for every field.
func NewRowAccessor(data CSVData, headerIdx HeaderIndex, mapping FieldMapping, row int) RowAccessor {
	var cells []string
	if row >= 0 && row < len(data.Rows) {
		cells = data.Rows[row]
	}
	return RowAccessor{row: cells, headerIdx: headerIdx, mapping: mapping}
}

// Get returns the trimmed cell for a logical field, or "" when the field is
// unmapped, the mapped header is not in the file, or the row is too short.
func (a RowAccessor) Get(field string) string {
	header, ok := a.mapping[field]
	if !ok || header == "" {
		return ""
	}
	pos, ok := a.headerIdx[header]
	if !ok || pos >= len(a.row) {
		return ""
	}
	return strings.TrimSpace(a.row[pos])
}
