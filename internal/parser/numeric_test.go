// internal/parser/numeric_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// ParseMoney
// ==========================

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"50.000", 50000, true},
		{"70 mil", 70000, true},
		{"70mil", 70000, true},
		{"1,5 mil", 1500, true},
		{"2,75 mil", 2750, true},
		{"1200 mil", 1200, true},
		{"45.060,56", 45060, true},
		{"99,99", 99, true},
		{" 120 000 ", 120000, true},
		{"R$ 10", 10, true},
		{"abc", 0, false},
		{"", 0, false},
		{"mil", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMoney(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ==========================
// Years
// ==========================

func TestYearBound_Extract(t *testing.T) {
	b := yearBound{min: 1900, max: 2025}

	tests := []struct {
		in       string
		min, max interface{}
	}{
		{"entre 2016 e 2019", 2016, 2019},
		{"entre 2019 e 2016", 2016, 2019},
		{"a partir de 2015", 2015, nil},
		{"acima de 2010", 2010, nil},
		{"pra cima de 2012", 2012, nil},
		{"ate 2015", nil, 2015},
		{"de 2012 ate 2016", 2012, 2016},
		{"de 2016 ate 2012", 2012, 2016},
		{"ate 2030", nil, nil},
		{"sem ano", nil, nil},
		{"20150", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r := b.extract(tt.in)
			assert.Equal(t, tt.min, intVal(r.min))
			assert.Equal(t, tt.max, intVal(r.max))
		})
	}
}

func TestYearBound_LastFreeYear(t *testing.T) {
	b := yearBound{min: 1900, max: 2025}

	y, ok := b.lastFreeYear("2015 ou 2018", nil)
	assert.True(t, ok)
	assert.Equal(t, 2018, y)

	y, ok = b.lastFreeYear("2015 ou 2018", spans{{8, 12}})
	assert.True(t, ok)
	assert.Equal(t, 2015, y)

	_, ok = b.lastFreeYear("2030", nil)
	assert.False(t, ok)
}

func TestMarkedPrice_SkipsYearSpan(t *testing.T) {
	text := "ate 2015"
	r := yearBound{min: 1900, max: 2025}.extract(text)

	_, _, ok := markedPriceOf(text, r.used)
	assert.False(t, ok)

	p, _, ok := markedPriceOf("por ate r$ 30.000", nil)
	assert.True(t, ok)
	assert.Equal(t, 30000, p)
}

// ==========================
// Disambiguator
// ==========================

func TestYearOrPrice_Classify(t *testing.T) {
	d := YearOrPrice{YearMin: 1900, YearMax: 2025}

	tests := []struct {
		text string
		want Verdict
	}{
		{"r$ 45.060,56", VerdictPrice},
		{"2015", VerdictYear},
		{"2015 reais", VerdictPrice},
		{"15 mil", VerdictPrice},
		{"80.000", VerdictPrice},
		{"3000", VerdictPrice},
		{"2.015", VerdictYear},
		{"1.990", VerdictYear},
		{"2.030", VerdictPrice},
		{"150", VerdictIgnore},
		{"7", VerdictIgnore},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			found := bareNumbers(tt.text, nil)
			if assert.Len(t, found, 1) {
				assert.Equal(t, tt.want, d.Classify(found[0]), tt.want.String())
			}
		})
	}
}

func TestYearOrPrice_UnparsedIsIgnored(t *testing.T) {
	d := YearOrPrice{YearMin: 1900, YearMax: 2025}
	assert.Equal(t, VerdictIgnore, d.Classify(NumberSpan{Digits: "x", Currency: true}))
}

func TestNumberSpan_DigitCount(t *testing.T) {
	assert.Equal(t, 7, NumberSpan{Digits: "45.060,56"}.DigitCount())
	assert.Equal(t, 0, NumberSpan{}.DigitCount())
}
