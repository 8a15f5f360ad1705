package core

// convert.go provides type coercion for raw CSV cell values.
//
// Coercion never fails loudly. Unparsable numbers are kept as their original
// text and blank input yields no value at all, so every rejection decision is
// left to the row validator where it shows up as a visible issue.

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindText ValueKind = iota
	KindNumber
	KindDecimal
	KindBoolean
	KindDate
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a coerced custom field value. Only the field matching Kind is set.
type Value struct {
	Kind  ValueKind
	Text  string // KindText and KindDate
	Int   int64
	Float float64
	Bool  bool
	List  []string
}

// TextValue returns a text variant.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// NumberValue returns an integer variant.
func NumberValue(i int64) Value { return Value{Kind: KindNumber, Int: i} }

// DecimalValue returns a floating point variant.
func DecimalValue(f float64) Value { return Value{Kind: KindDecimal, Float: f} }

// BoolValue returns a boolean variant.
func BoolValue(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// DateValue returns a date variant holding the unparsed date text.
func DateValue(s string) Value { return Value{Kind: KindDate, Text: s} }

// ListValue returns a string list variant.
func ListValue(items []string) Value { return Value{Kind: KindList, List: items} }

// Interface returns the plain Go value held by v.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNumber:
		return v.Int
	case KindDecimal:
		return v.Float
	case KindBoolean:
		return v.Bool
	case KindList:
		return v.List
	default:
		return v.Text
	}
}

// String formats the value for display and spreadsheet export.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatInt(v.Int, 10)
	case KindDecimal:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindBoolean:
		if v.Bool {
			return "Yes"
		}
		return "No"
	case KindList:
		return strings.Join(v.List, ", ")
	default:
		return v.Text
	}
}

// MarshalJSON encodes the value as its plain JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a plain JSON value back into a variant.
// Dates decode as text because JSON does not distinguish them.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case bool:
		*v = BoolValue(x)
	case float64:
		if x == math.Trunc(x) && !strings.ContainsAny(string(data), ".eE") {
			*v = NumberValue(int64(x))
		} else {
			*v = DecimalValue(x)
		}
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		*v = ListValue(items)
	case string:
		*v = TextValue(x)
	default:
		*v = TextValue("")
	}
	return nil
}

// Coerce converts a raw cell into a value of the declared type.
// The boolean result is false when the input is blank and the field should
// be omitted.
func Coerce(raw string, t FieldType) (Value, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{}, false
	}

	switch t {
	case FieldNumber:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NumberValue(i), true
		}
		return TextValue(s), true
	case FieldDecimal:
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return DecimalValue(f), true
		}
		return TextValue(s), true
	case FieldBoolean:
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return BoolValue(true), true
		default:
			return BoolValue(false), true
		}
	case FieldDate:
		return DateValue(s), true
	case FieldMultiselect:
		items := splitList(s)
		if len(items) == 0 {
			return Value{}, false
		}
		return ListValue(items), true
	default:
		// text, textarea, email, url, select and any type we do not know yet
		return TextValue(s), true
	}
}

// splitList splits a comma separated cell and drops empty segments.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// nonNumericRegex matches everything that is not a digit or a decimal point.
var nonNumericRegex = regexp.MustCompile(`[^0-9.]`)

// numericPrefix is the longest leading number left after stripping, so a
// trailing period from "p.a." or "yrs." does not void the value.
var numericPrefix = regexp.MustCompile(`^[0-9]*\.?[0-9]*`)

// MaxExperienceMonths bounds experience so it fits an INTEGER column.
const MaxExperienceMonths = math.MaxInt32

// CoerceNumeric strips currency symbols, separators and units and parses the
// leading number of the remainder as a float. Used for salaries and days to
// join.
func CoerceNumeric(raw string) (float64, bool) {
	s := nonNumericRegex.ReplaceAllString(strings.TrimSpace(raw), "")
	s = numericPrefix.FindString(s)
	if s == "" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// CoerceExperienceMonths reads a number of years and returns whole months.
// Values above MaxExperienceMonths are treated as absent.
func CoerceExperienceMonths(raw string) (int, bool) {
	years, ok := CoerceNumeric(raw)
	if !ok {
		return 0, false
	}
	months := math.Round(years * 12)
	if months > MaxExperienceMonths {
		return 0, false
	}
	return int(months), true
}
