// Package match implements the token-exact matching used for every cell:
// cells are split on common delimiters into tokens, and a token must equal a
// search variant in full. Substring hits never count, so a cell holding
// "A12345" does not match the term "1234" while "A123, B456" still matches
// "A123".
package match

import "strings"

const trimset = `.,;:!?()[]{}"'`

var delimiters = strings.NewReplacer(
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
	",", " ",
	";", " ",
	"\t", " ",
)

// Tokenize normalizes a cell's text into comparison tokens: line breaks,
// commas, semicolons and tabs become spaces, the text is split on
// whitespace, and leading/trailing punctuation is stripped from each token.
func Tokenize(cell string) []string {
	parts := strings.Fields(delimiters.Replace(cell))
	tokens := parts[:0]
	for _, part := range parts {
		clean := strings.Trim(part, trimset)
		if clean != "" {
			tokens = append(tokens, clean)
		}
	}
	return tokens
}

// Matches reports whether any token of the cell equals any of the variants,
// either verbatim or with its internal spaces removed.
func Matches(cell string, variants []string) bool {
	if cell == "" || len(variants) == 0 {
		return false
	}
	for _, token := range Tokenize(cell) {
		compact := strings.ReplaceAll(token, " ", "")
		for _, variant := range variants {
			if variant == "" {
				continue
			}
			if token == variant || compact == variant {
				return true
			}
		}
	}
	return false
}

// MatchTerms returns the originals of every search term that matches the
// cell, in search-set order.
func MatchTerms(cell string, set []SearchTerm) []string {
	var found []string
	for _, term := range set {
		if Matches(cell, term.Variants) {
			found = append(found, term.Original)
		}
	}
	return found
}
