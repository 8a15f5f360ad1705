package core

// parse.go turns raw CSV text into headers and rows.
//
// The parser works line by line and is deliberately forgiving: malformed
// quoting never produces an error, it only produces odd fields that the
// validator will later report on. Quoted fields cannot span lines.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyFile is returned when a file has no non-blank lines.
var ErrEmptyFile = errors.New("empty file: no non-blank lines")

// ErrFileTooLarge is returned when a file exceeds the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// ReadError wraps a failure to read the import source.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read file: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ParseLine splits a single line into fields.
//
// A field may be wrapped in double quotes, inside which commas are literal
// and "" is one quote character. End of line flushes the last field.
func ParseLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && !inQuotes:
			inQuotes = true
		case c == '"' && inQuotes:
			if i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = false
			}
		case c == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}

	return append(fields, cur.String())
}

// ParseText parses a whole file. The first non-blank line becomes the
// normalized header row; data rows whose cells are all blank are dropped.
func ParseText(text string) (CSVData, error) {
	lines := strings.Split(text, "\n")

	var data CSVData
	headerSeen := false

	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !headerSeen {
			data.Headers = NormalizeHeaders(ParseLine(line))
			headerSeen = true
			continue
		}

		row := ParseLine(line)
		if isEmptyRow(row) {
			continue
		}
		data.Rows = append(data.Rows, row)
		data.Lines = append(data.Lines, i+1)
	}

	if !headerSeen {
		return CSVData{}, ErrEmptyFile
	}

	return data, nil
}

// ReadText reads the whole import source into a string.
//
// The source is passed through BOM skipping and UTF-8 sanitization. If
// maxSize is positive, sources larger than maxSize bytes fail with
// ErrFileTooLarge. Cancelling ctx aborts the read.
func ReadText(ctx context.Context, r io.Reader, maxSize int64) (string, error) {
	src := WrapForImport(&contextReader{ctx: ctx, r: r})

	var limited io.Reader = src
	if maxSize > 0 {
		limited = io.LimitReader(src, maxSize+1)
	}

	data, err := io.ReadAll(limited)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &ReadError{Err: err}
	}

	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, maxSize)
	}

	return string(data), nil
}

// contextReader stops reading once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
