package match

import (
	"math"
	"strconv"
	"strings"
)

// SearchTerm is one user-supplied value together with the normalized forms
// it should match against cell tokens. Variants are computed once per scan
// and read-only afterwards.
type SearchTerm struct {
	Original string
	Variants []string
}

// Expand derives the match variants for a single term: the trimmed form, its
// case folds, the form with spaces removed, and, when the term parses as a
// number, the truncated integer and decimal renderings. The result is
// deduplicated with order preserved.
func Expand(term string) []string {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return nil
	}

	candidates := []string{
		trimmed,
		strings.ToLower(trimmed),
		strings.ToUpper(trimmed),
		strings.ReplaceAll(trimmed, " ", ""),
	}

	if num, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(num) && !math.IsInf(num, 0) {
		// The float-to-int conversion is only defined inside the int64
		// range; values beyond it get no integer variant.
		if math.Abs(num) < 1<<62 {
			candidates = append(candidates, strconv.FormatInt(int64(num), 10))
		}
		candidates = append(candidates, decimalForm(num))
	}

	seen := make(map[string]bool, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			variants = append(variants, c)
		}
	}
	return variants
}

// decimalForm renders a float the way users type decimals: whole values keep
// one fractional digit ("5.0"), everything else uses the shortest exact form.
func decimalForm(num float64) string {
	if num == math.Trunc(num) && !math.IsInf(num, 0) {
		return strconv.FormatFloat(num, 'f', 1, 64)
	}
	return strconv.FormatFloat(num, 'f', -1, 64)
}

// BuildSearchSet expands every term, silently dropping terms that are empty
// after trimming. An empty result means the request had no usable terms.
func BuildSearchSet(terms []string) []SearchTerm {
	set := make([]SearchTerm, 0, len(terms))
	for _, term := range terms {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" {
			continue
		}
		set = append(set, SearchTerm{Original: trimmed, Variants: Expand(trimmed)})
	}
	return set
}
