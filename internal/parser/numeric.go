// internal/parser/numeric.go
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	yearGroup    = `(19\d{2}|20\d{2})`
	thousandWord = "mil"
)

var (
	moneyDigits  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	whitespace   = regexp.MustCompile(`\s+`)
	yearBetween  = regexp.MustCompile(`\bentre\s*` + yearGroup + `\s*e\s*` + yearGroup + `\b`)
	yearFrom     = regexp.MustCompile(`\b(?:a partir de|pra cima de|acima de|de)\s*` + yearGroup + `\b`)
	yearUntil    = regexp.MustCompile(`\bate\s*` + yearGroup + `\b`)
	yearToken    = regexp.MustCompile(`\b` + yearGroup + `\b`)
	markedPrice  = regexp.MustCompile(`\b(?:no maximo|por ate|ate)\s*(r\$\s*)?(\d[\d.,]*(?:\s*mil\b)?)`)
	bareNumber   = regexp.MustCompile(`(r\$\s*)?\b(\d[\d.,]*\d|\d)(\s*mil\b)?(\s*reais\b)?`)
)

// ParseMoney reads an amount written the Brazilian way: "." groups
// thousands, "," starts the decimals, and a trailing "mil" multiplies by
// one thousand when the amount is still below a thousand. The result is
// truncated to whole units. A span without digits yields false.
func ParseMoney(text string) (int, bool) {
	s := strings.ToLower(whitespace.ReplaceAllString(text, ""))
	thousand := strings.Contains(s, thousandWord)
	s = strings.ReplaceAll(s, thousandWord, "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	num := moneyDigits.FindString(s)
	if num == "" {
		return 0, false
	}
	intPart, frac, _ := strings.Cut(num, ".")
	whole, err := strconv.Atoi(intPart)
	if err != nil {
		return 0, false
	}
	if !thousand || whole >= 1000 {
		return whole, true
	}
	// "1,5 mil" is 1500: the first three decimals become units
	frac = (frac + "000")[:3]
	extra, err := strconv.Atoi(frac)
	if err != nil {
		return 0, false
	}
	return whole*1000 + extra, true
}

type span struct{ start, end int }

func (s span) overlaps(o span) bool { return s.start < o.end && o.start < s.end }

type spans []span

func (ss spans) overlaps(s span) bool {
	for _, o := range ss {
		if o.overlaps(s) {
			return true
		}
	}
	return false
}

// yearBound is the plausible-year range, inclusive.
type yearBound struct{ min, max int }

func (b yearBound) contains(y int) bool { return y >= b.min && y <= b.max }

// yearRange holds what the year phrases yielded plus the spans they used.
type yearRange struct {
	min, max *int
	used     spans
}

func (b yearBound) extract(normalized string) yearRange {
	var out yearRange
	if m := yearBetween.FindStringSubmatchIndex(normalized); m != nil {
		y1, ok1 := b.parse(normalized[m[2]:m[3]])
		y2, ok2 := b.parse(normalized[m[4]:m[5]])
		if ok1 && ok2 {
			if y1 > y2 {
				y1, y2 = y2, y1
			}
			out.min, out.max = &y1, &y2
			out.used = append(out.used, span{m[2], m[3]}, span{m[4], m[5]})
			return out
		}
	}
	if y, s, ok := b.first(yearFrom, normalized); ok {
		out.min = &y
		out.used = append(out.used, s)
	}
	if y, s, ok := b.first(yearUntil, normalized); ok {
		out.max = &y
		out.used = append(out.used, s)
	}
	if out.min != nil && out.max != nil && *out.min > *out.max {
		out.min, out.max = out.max, out.min
	}
	return out
}

// first returns the first in-bound year captured by re.
func (b yearBound) first(re *regexp.Regexp, normalized string) (int, span, bool) {
	for _, m := range re.FindAllStringSubmatchIndex(normalized, -1) {
		if y, ok := b.parse(normalized[m[2]:m[3]]); ok {
			return y, span{m[2], m[3]}, true
		}
	}
	return 0, span{}, false
}

func (b yearBound) parse(s string) (int, bool) {
	y, err := strconv.Atoi(s)
	if err != nil || !b.contains(y) {
		return 0, false
	}
	return y, true
}

// lastFreeYear is the right-most in-bound year token outside used.
func (b yearBound) lastFreeYear(normalized string, used spans) (int, bool) {
	matches := yearToken.FindAllStringSubmatchIndex(normalized, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		s := span{m[2], m[3]}
		if used.overlaps(s) {
			continue
		}
		if y, ok := b.parse(normalized[s.start:s.end]); ok {
			return y, true
		}
	}
	return 0, false
}

// markedPriceOf finds the first "até"/"no máximo"/"por até" amount that
// was not already read as a year.
func markedPriceOf(normalized string, used spans) (int, span, bool) {
	for _, m := range markedPrice.FindAllStringSubmatchIndex(normalized, -1) {
		s := span{m[4], m[5]}
		if used.overlaps(s) {
			continue
		}
		if p, ok := ParseMoney(normalized[s.start:s.end]); ok {
			return p, s, true
		}
	}
	return 0, span{}, false
}

// bareNumbers lists the numeric spans of normalized text with their
// surface markers, skipping spans already used.
func bareNumbers(normalized string, used spans) []NumberSpan {
	var out []NumberSpan
	for _, m := range bareNumber.FindAllStringSubmatchIndex(normalized, -1) {
		s := span{m[4], m[5]}
		if used.overlaps(s) {
			continue
		}
		n := NumberSpan{
			Text:     normalized[m[0]:m[1]],
			Digits:   normalized[m[4]:m[5]],
			Currency: m[2] >= 0 || m[8] >= 0,
			Thousand: m[6] >= 0,
			start:    m[0],
			end:      m[1],
		}
		amount := n.Digits
		if n.Thousand {
			amount += thousandWord
		}
		n.Value, n.Parsed = ParseMoney(amount)
		out = append(out, n)
	}
	return out
}
