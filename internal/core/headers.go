package core

import (
	"strconv"
	"strings"
)

// NormalizeHeaders trims headers and makes them unique while keeping order.
//
// Repeated headers get a "_N" suffix where N is the occurrence count, so
// ["Name", "Name"] becomes ["Name", "Name_2"]. Empty headers become
// "Column_K" where K counts the empty headers seen so far.
func NormalizeHeaders(raw []string) []string {
	counts := make(map[string]int, len(raw))
	out := make([]string, len(raw))

	for i, h := range raw {
		h = strings.TrimSpace(h)
		counts[h]++
		n := counts[h]

		switch {
		case h == "":
			out[i] = "Column_" + strconv.Itoa(n)
		case n == 1:
			out[i] = h
		default:
			out[i] = h + "_" + strconv.Itoa(n)
		}
	}

	return out
}
