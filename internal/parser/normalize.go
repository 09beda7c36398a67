// internal/parser/normalize.go
package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var tokenPattern = regexp.MustCompile(`[A-Za-zÀ-ÿ0-9\-]+`)

func isNonASCII(r rune) bool { return r > unicode.MaxASCII }

// Normalize folds text for matching: compatibility decomposition, drop
// everything outside ASCII (combining marks included), then lower case.
// It never fails; the empty string maps to itself.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// transformers carry state, so the chain is built per call
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(isNonASCII)))
	out, _, err := transform.String(t, text)
	if err != nil {
		out = strings.Map(func(r rune) rune {
			if isNonASCII(r) {
				return -1
			}
			return r
		}, text)
	}
	return strings.ToLower(out)
}

// Tokens splits the raw text into candidate words made of letters, digits
// and hyphens. Single characters are dropped.
func Tokens(raw string) []string {
	found := tokenPattern.FindAllString(raw, -1)
	out := make([]string, 0, len(found))
	for _, tok := range found {
		if utf8.RuneCountInString(tok) >= 2 {
			out = append(out, tok)
		}
	}
	return out
}
