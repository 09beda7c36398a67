// internal/parser/matchers.go
package parser

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// statePattern finds upper-case pairs; findState checks the neighbours,
// since \b only knows ASCII word characters.
var statePattern = regexp.MustCompile(`[A-Z]{2}`)

type compiledTerm struct {
	re        *regexp.Regexp
	canonical string
}

// matchers holds the reference tables compiled into whole-word patterns.
// It is built once per Parser and only read afterwards.
type matchers struct {
	bodies []compiledTerm
	fuels  []compiledTerm
	makes  []compiledTerm
	states map[string]struct{}
}

func newMatchers(t *Tables) *matchers {
	m := &matchers{states: make(map[string]struct{}, len(t.States))}
	for _, b := range t.Bodies {
		m.bodies = append(m.bodies, compiledTerm{wordPattern(regexp.QuoteMeta(Normalize(b.Pattern))), b.Canonical})
	}
	for _, f := range t.Fuels {
		m.fuels = append(m.fuels, compiledTerm{wordPattern(f.Pattern), f.Canonical})
	}
	for _, mk := range t.Makes {
		m.makes = append(m.makes, compiledTerm{wordPattern(regexp.QuoteMeta(Normalize(mk))), mk})
	}
	for _, s := range t.States {
		m.states[s] = struct{}{}
	}
	return m
}

func wordPattern(fragment string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + fragment + `)\b`)
}

func firstTerm(terms []compiledTerm, normalized string) (string, bool) {
	for _, t := range terms {
		if t.re.MatchString(normalized) {
			return t.canonical, true
		}
	}
	return "", false
}

func (m *matchers) findBody(normalized string) (string, bool) { return firstTerm(m.bodies, normalized) }

func (m *matchers) findFuel(normalized string) (string, bool) { return firstTerm(m.fuels, normalized) }

func (m *matchers) findMake(normalized string) (string, bool) { return firstTerm(m.makes, normalized) }

// findState looks at the raw text: only standalone upper-case pairs
// count, so "PRÉ" or "SEÇÃO" never yield a state.
func (m *matchers) findState(raw string) (string, bool) {
	for _, loc := range statePattern.FindAllStringIndex(raw, -1) {
		if !standalone(raw, loc[0], loc[1]) {
			continue
		}
		tok := raw[loc[0]:loc[1]]
		if _, ok := m.states[tok]; ok {
			return tok, true
		}
	}
	return "", false
}

func standalone(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
