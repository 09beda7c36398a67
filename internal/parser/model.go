// internal/parser/model.go
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultFuzzyCutoff is the minimum similarity ratio for a fuzzy model hit.
const DefaultFuzzyCutoff = 0.72

type modelCandidate struct {
	folded    string
	chars     []string
	canonical string
}

// ModelResolver maps free text to a known model name: per token, left to
// right, an alias hit wins outright, otherwise the closest known model at
// or above the cutoff. The first token that yields either stops the scan.
type ModelResolver struct {
	aliases    map[string]string
	candidates []modelCandidate
	makes      map[string]struct{}
	cutoff     float64
}

func NewModelResolver(t *Tables, cutoff float64) *ModelResolver {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultFuzzyCutoff
	}
	r := &ModelResolver{
		aliases: make(map[string]string, len(t.Aliases)),
		makes:   make(map[string]struct{}, len(t.Makes)),
		cutoff:  cutoff,
	}
	for k, v := range t.Aliases {
		r.aliases[foldToken(k)] = v
	}
	for _, m := range t.Models {
		f := foldToken(m)
		r.candidates = append(r.candidates, modelCandidate{folded: f, chars: strings.Split(f, ""), canonical: m})
	}
	for _, mk := range t.Makes {
		r.makes[foldToken(mk)] = struct{}{}
	}
	return r
}

// Resolve scans the words of raw. A word and its right neighbour are
// first tried together against the aliases, so "HR V" and "T Cross"
// resolve like "HR-V" and "T-Cross".
func (r *ModelResolver) Resolve(raw string) (string, bool) {
	words := tokenPattern.FindAllString(raw, -1)
	for i, w := range words {
		if i+1 < len(words) {
			if model, ok := r.aliases[foldToken(w+" "+words[i+1])]; ok {
				return model, true
			}
		}
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		if model, ok := r.ResolveToken(w); ok {
			return model, true
		}
	}
	return "", false
}

// ResolveToken resolves a single token. Make names never resolve: they
// sit too close to short model names ("fiat" against "fit").
func (r *ModelResolver) ResolveToken(tok string) (string, bool) {
	word := foldToken(tok)
	if word == "" {
		return "", false
	}
	if _, isMake := r.makes[word]; isMake {
		return "", false
	}
	if model, ok := r.aliases[word]; ok {
		return model, true
	}
	return r.closest(word)
}

func (r *ModelResolver) closest(word string) (string, bool) {
	wordChars := strings.Split(word, "")
	best, bestScore := -1, 0.0
	for i, c := range r.candidates {
		score := difflib.NewMatcher(c.chars, wordChars).Ratio()
		if score < r.cutoff {
			continue
		}
		// ties go to the lexicographically larger candidate
		if best < 0 || score > bestScore || (score == bestScore && c.folded > r.candidates[best].folded) {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return "", false
	}
	return r.candidates[best].canonical, true
}
