package types

import (
	"sort"
	"strconv"
	"strings"
)

// ParseColumns turns a comma-separated list of 1-based column numbers into
// a unique ascending slice. Blank parts are skipped; a non-numeric or
// non-positive part invalidates the whole list.
func ParseColumns(input string) []int {
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil
		}
		seen[n] = true
	}

	columns := make([]int, 0, len(seen))
	for n := range seen {
		columns = append(columns, n)
	}
	sort.Ints(columns)
	return columns
}

// ParseSheetNames splits a comma-separated sheet list, dropping blanks and
// preserving order.
func ParseSheetNames(input string) []string {
	var names []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// ParseTerms splits newline-separated search values, dropping blanks.
func ParseTerms(input string) []string {
	var terms []string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			terms = append(terms, line)
		}
	}
	return terms
}
