package core

import (
	"reflect"
	"testing"
)

func TestNormalizeHeaders(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"unchanged", []string{"Name", "Email"}, []string{"Name", "Email"}},
		{"trimmed", []string{" Name ", "\tEmail"}, []string{"Name", "Email"}},
		{"duplicates", []string{"Name", "Name", "Name"}, []string{"Name", "Name_2", "Name_3"}},
		{"duplicates after trim", []string{"Email", " Email "}, []string{"Email", "Email_2"}},
		{"empty headers", []string{"", "Name", "  "}, []string{"Column_1", "Name", "Column_2"}},
		{"empty input", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeHeaders(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeHeaders(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeHeaders_PreservesLength(t *testing.T) {
	raw := []string{"a", "", "a", "b", "", "a"}
	if got := NormalizeHeaders(raw); len(got) != len(raw) {
		t.Errorf("len = %d, want %d", len(got), len(raw))
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Name", "Email", "Name"})
	if idx["Name"] != 0 || idx["Email"] != 1 {
		t.Errorf("MakeHeaderIndex() = %v", idx)
	}
}
