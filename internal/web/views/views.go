// Package views renders the HTMX fragments of the import screen. The
// components live in views.templ; run `templ generate` after editing it.
package views

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

func reportURL(importID string) templ.SafeURL {
	return templ.URL("/api/imports/" + importID + "/report.xlsx")
}

func commitPath(importID string) string {
	return "/api/imports/" + importID + "/commit"
}

func pluralRows(n int, noun string) string {
	s := strconv.Itoa(n) + " " + noun
	if noun == "valid" {
		if n == 1 {
			return s + " row"
		}
		return s + " rows"
	}
	if n != 1 {
		s += "s"
	}
	return s
}

// rowNumbers lists row indexes as 1-based row numbers.
func rowNumbers(idx []int) string {
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = strconv.Itoa(n + 1)
	}
	return strings.Join(parts, ", ")
}
