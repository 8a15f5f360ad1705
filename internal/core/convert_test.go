package core

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		typ    FieldType
		want   Value
		wantOK bool
	}{
		{"blank omitted", "   ", FieldText, Value{}, false},
		{"text trimmed", "  hello ", FieldText, TextValue("hello"), true},
		{"textarea", "long text", FieldTextarea, TextValue("long text"), true},
		{"email kept as text", "a@x.io", FieldEmailType, TextValue("a@x.io"), true},
		{"url kept as text", "https://x.io/cv.pdf", FieldURL, TextValue("https://x.io/cv.pdf"), true},
		{"select", "Remote", FieldSelect, TextValue("Remote"), true},
		{"unknown type", "x", FieldType("rating"), TextValue("x"), true},
		{"number", "42", FieldNumber, NumberValue(42), true},
		{"negative number", "-7", FieldNumber, NumberValue(-7), true},
		{"number with fraction falls back", "4.5", FieldNumber, TextValue("4.5"), true},
		{"number not numeric falls back", "abc", FieldNumber, TextValue("abc"), true},
		{"decimal", "4.75", FieldDecimal, DecimalValue(4.75), true},
		{"decimal integer", "3", FieldDecimal, DecimalValue(3), true},
		{"decimal not numeric falls back", "n/a", FieldDecimal, TextValue("n/a"), true},
		{"boolean true", "TRUE", FieldBoolean, BoolValue(true), true},
		{"boolean 1", "1", FieldBoolean, BoolValue(true), true},
		{"boolean yes", "Yes", FieldBoolean, BoolValue(true), true},
		{"boolean no", "no", FieldBoolean, BoolValue(false), true},
		{"boolean other", "maybe", FieldBoolean, BoolValue(false), true},
		{"date kept", "2024-01-15", FieldDate, DateValue("2024-01-15"), true},
		{"multiselect", "Go, SQL,,Rust ", FieldMultiselect, ListValue([]string{"Go", "SQL", "Rust"}), true},
		{"multiselect only commas", ", ,", FieldMultiselect, Value{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.raw, tt.typ)
			if ok != tt.wantOK {
				t.Fatalf("Coerce(%q, %q) ok = %v, want %v", tt.raw, tt.typ, ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Coerce(%q, %q) = %#v, want %#v", tt.raw, tt.typ, got, tt.want)
			}
		})
	}
}

func TestCoerceNumeric(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"1200000", 1200000, true},
		{"₹12,00,000", 1200000, true},
		{"$85,000.50", 85000.50, true},
		{"30 days", 30, true},
		{"-5", 5, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"1.2.3", 1.2, true},
		{"80,000.00 p.a.", 80000, true},
		{"12 L.", 12, true},
		{"...", 0, false},
		{"1" + strings.Repeat("0", 400), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CoerceNumeric(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CoerceNumeric(%q) = %v, %v, want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCoerceExperienceMonths(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"5", 60, true},
		{"2.5", 30, true},
		{"3.04", 36, true},
		{"1.05 yrs", 13, true},
		{"0", 0, true},
		{"5.5 yrs.", 66, true},
		{"fresher", 0, false},
		{"", 0, false},
		{"1000000000000000000000", 0, false},
		{"178956971", 0, false},
		{"178956970", 2147483640, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CoerceExperienceMonths(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CoerceExperienceMonths(%q) = %d, %v, want %d, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{TextValue("x"), "x"},
		{NumberValue(12), "12"},
		{DecimalValue(2.5), "2.5"},
		{BoolValue(true), "Yes"},
		{BoolValue(false), "No"},
		{DateValue("2024-01-15"), "2024-01-15"},
		{ListValue([]string{"Go", "SQL"}), "Go, SQL"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%s String() = %q, want %q", tt.v.Kind, got, tt.want)
		}
	}
}

func TestValue_JSON(t *testing.T) {
	fields := map[string]Value{
		"skills":   ListValue([]string{"Go", "SQL"}),
		"remote":   BoolValue(true),
		"rating":   NumberValue(4),
		"score":    DecimalValue(7.5),
		"nickname": TextValue("Ash"),
	}

	b, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"nickname":"Ash","rating":4,"remote":true,"score":7.5,"skills":["Go","SQL"]}`
	if string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}

	var back map[string]Value
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back["rating"].Kind != KindNumber || back["score"].Kind != KindDecimal {
		t.Errorf("numeric kinds not restored: %v %v", back["rating"].Kind, back["score"].Kind)
	}
	if back["skills"].Kind != KindList || len(back["skills"].List) != 2 {
		t.Errorf("list not restored: %#v", back["skills"])
	}
}
