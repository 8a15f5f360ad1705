package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"simple", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `"Doe, Jane",x`, []string{"Doe, Jane", "x"}},
		{"escaped quote", `"say ""hi""",y`, []string{`say "hi"`, "y"}},
		{"empty fields", ",,", []string{"", "", ""}},
		{"trailing comma", "a,", []string{"a", ""}},
		{"single field", "only", []string{"only"}},
		{"empty line", "", []string{""}},
		{"unterminated quote", `"abc,def`, []string{"abc,def"}},
		{"quote mid field", `ab"c,d"e`, []string{"abc,de"}},
		{"whitespace kept", " a , b ", []string{" a ", " b "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseText(t *testing.T) {
	text := "\r\nName,Email,Name\r\nAsha,a@x.io,dup\r\n\r\n , ,\nRavi,r@x.io\n"

	data, err := ParseText(text)
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}

	wantHeaders := []string{"Name", "Email", "Name_2"}
	if !reflect.DeepEqual(data.Headers, wantHeaders) {
		t.Errorf("Headers = %q, want %q", data.Headers, wantHeaders)
	}

	wantRows := [][]string{{"Asha", "a@x.io", "dup"}, {"Ravi", "r@x.io"}}
	if !reflect.DeepEqual(data.Rows, wantRows) {
		t.Errorf("Rows = %q, want %q", data.Rows, wantRows)
	}

	wantLines := []int{3, 6}
	if !reflect.DeepEqual(data.Lines, wantLines) {
		t.Errorf("Lines = %v, want %v", data.Lines, wantLines)
	}
}

func TestParseText_HeaderOnly(t *testing.T) {
	data, err := ParseText("Name,Email\n")
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	if len(data.Rows) != 0 {
		t.Errorf("Rows = %d, want 0", len(data.Rows))
	}
}

func TestParseText_Empty(t *testing.T) {
	for _, text := range []string{"", "\n\n", "  \r\n\t\n"} {
		if _, err := ParseText(text); !errors.Is(err, ErrEmptyFile) {
			t.Errorf("ParseText(%q) error = %v, want ErrEmptyFile", text, err)
		}
	}
}

func TestReadText(t *testing.T) {
	got, err := ReadText(context.Background(), strings.NewReader("\xEF\xBB\xBFName\nAsha\n"), 0)
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if got != "Name\nAsha\n" {
		t.Errorf("ReadText() = %q", got)
	}
}

func TestReadText_TooLarge(t *testing.T) {
	_, err := ReadText(context.Background(), strings.NewReader(strings.Repeat("x", 11)), 10)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("ReadText() error = %v, want ErrFileTooLarge", err)
	}

	if _, err := ReadText(context.Background(), strings.NewReader(strings.Repeat("x", 10)), 10); err != nil {
		t.Errorf("ReadText() at limit error = %v, want nil", err)
	}
}

func TestReadText_ReadError(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := ReadText(context.Background(), iotest.ErrReader(boom), 0)

	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("ReadText() error = %v, want *ReadError", err)
	}
	if !errors.Is(err, boom) {
		t.Error("ReadError should unwrap to the cause")
	}
}

func TestReadText_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadText(ctx, strings.NewReader("Name\n"), 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ReadText() error = %v, want context.Canceled", err)
	}
}
