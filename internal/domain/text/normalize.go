// Package text provides the query normalization shared with the search
// index: the store builds its index from the same folded form, so queries
// normalized here match rows regardless of accents.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folder decomposes accented code points and strips the combining marks,
// producing an ASCII-comparable form ("choléra" -> "cholera").
var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns s with diacritics removed and whitespace trimmed.
// Pure function; on a transform failure the trimmed input is returned
// unchanged rather than losing the query.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	out, _, err := transform.String(folder, s)
	if err != nil {
		return s
	}
	return out
}
