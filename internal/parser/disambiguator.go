// internal/parser/disambiguator.go
package parser

// NumberSpan is a number found in the normalized text outside any price
// or year phrase, with the surface markers seen around it.
type NumberSpan struct {
	Text     string // whole match, markers included
	Digits   string // the number as written
	Value    int    // ParseMoney of Digits (and "mil"), when Parsed
	Parsed   bool
	Currency bool // "r$" prefix or "reais" suffix
	Thousand bool // "mil" suffix

	start, end int
}

// DigitCount counts the digits of the written number, separators excluded.
func (n NumberSpan) DigitCount() int {
	c := 0
	for i := 0; i < len(n.Digits); i++ {
		if n.Digits[i] >= '0' && n.Digits[i] <= '9' {
			c++
		}
	}
	return c
}

// Verdict is what a Disambiguator decides about one NumberSpan.
type Verdict int

const (
	VerdictIgnore Verdict = iota
	VerdictPrice
	VerdictYear
)

func (v Verdict) String() string {
	switch v {
	case VerdictPrice:
		return "price"
	case VerdictYear:
		return "year"
	}
	return "ignore"
}

// Disambiguator decides whether an unmarked number is a price ceiling, a
// year, or noise. The rules are a locale heuristic, not a grammar;
// swap the implementation to change them.
type Disambiguator interface {
	Classify(n NumberSpan) Verdict
}

// YearOrPrice is the default policy, applied in this order:
//  1. a currency or "mil" marker makes the number a price;
//  2. a number whose value lies inside the year bound is a year, however
//     it is written ("2015", "2.015");
//  3. any other number with at least MinPriceDigits digits is a price.
//
// Everything else is ignored.
type YearOrPrice struct {
	YearMin        int
	YearMax        int
	MinPriceDigits int
}

func (d YearOrPrice) Classify(n NumberSpan) Verdict {
	if !n.Parsed {
		return VerdictIgnore
	}
	if n.Currency || n.Thousand {
		return VerdictPrice
	}
	if n.Value >= d.YearMin && n.Value <= d.YearMax {
		return VerdictYear
	}
	minDigits := d.MinPriceDigits
	if minDigits <= 0 {
		minDigits = 4
	}
	if n.DigitCount() >= minDigits {
		return VerdictPrice
	}
	return VerdictIgnore
}
