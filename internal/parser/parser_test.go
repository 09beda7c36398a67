// internal/parser/parser_test.go
package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-search/internal/models"
)

func newTestParser() *Parser {
	return New(DefaultConfig())
}

func strVal(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func intVal(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// ==========================
// Parse
// ==========================

func TestParse_EmptyInputOnlyLimit(t *testing.T) {
	p := newTestParser()

	for _, in := range []string{"", "   ", "\n\t"} {
		f := p.Parse(in)
		assert.Equal(t, []string{models.FieldLimit}, f.Fields(), "input %q", in)
		assert.Equal(t, 20, f.Limit)
	}
}

func TestParse_Scenarios(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name     string
		input    string
		make     interface{}
		model    interface{}
		body     interface{}
		fuel     interface{}
		state    interface{}
		yearMin  interface{}
		yearMax  interface{}
		priceMax interface{}
	}{
		{name: "marked price with thousands dot", input: "preço até 50.000", priceMax: 50000},
		{name: "marked price with mil", input: "preco ate 70 mil", priceMax: 70000},
		{name: "currency marked price truncated", input: "R$ 45.060,56", priceMax: 45060},
		{name: "two sided year range", input: "entre 2016 e 2019", yearMin: 2016, yearMax: 2019},
		{name: "two sided year range reversed", input: "entre 2019 e 2016", yearMin: 2016, yearMax: 2019},
		{name: "open lower bound", input: "de 2018 pra cima", yearMin: 2018},
		{name: "open upper bound is not a price", input: "até 2015", yearMax: 2015},
		{name: "hatch", input: "quero um hatch", body: "hatch"},
		{name: "picape eletrica", input: "picape elétrica", body: "pickup", fuel: "elétrico"},
		{name: "alias beats fuzzy", input: "quero HVR", model: "HR-V"},
		{
			name: "alias with mil price and trailing year", input: "tcross até 50 mil 2022",
			model: "T-Cross", priceMax: 50000, yearMin: 2022,
		},
		{name: "bare year backfills year_min", input: "Picape elétrica 2015", body: "pickup", fuel: "elétrico", yearMin: 2015},
		{
			name: "suv diesel range state", input: "SUV a diesel entre 2016 e 2019 em SP",
			body: "SUV", fuel: "diesel", state: "SP", yearMin: 2016, yearMax: 2019,
		},
		{
			name: "sedan flex price and floor", input: "Sedan flex até 80.000 de 2018 pra cima",
			body: "sedan", fuel: "flex", yearMin: 2018, priceMax: 80000,
		},
		{name: "make with price", input: "Toyota até 120000", make: "Toyota", priceMax: 120000},
		{name: "make and model", input: "Fiat Argo", make: "Fiat", model: "Argo"},
		{name: "fuzzy model", input: "Honda Civc", make: "Honda", model: "Civic"},
		{name: "hybrid without accent", input: "corolla hibrido", model: "Corolla", fuel: "híbrido"},
		{name: "cupe folds to coupe", input: "um cupê", body: "coupe"},
		{name: "unmarked large number is a price", input: "carro 80.000", priceMax: 80000},
		{name: "small number ignored", input: "3 portas"},
		{name: "reais suffix", input: "quero gastar 35000 reais", priceMax: 35000},
		{name: "no maximo", input: "no máximo 90 mil", priceMax: 90000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := p.Parse(tt.input)

			assert.Equal(t, tt.make, strVal(f.Make), "make")
			assert.Equal(t, tt.model, strVal(f.Model), "model")
			assert.Equal(t, tt.body, strVal(f.BodyType), "body_type")
			assert.Equal(t, tt.fuel, strVal(f.FuelType), "fuel_type")
			assert.Equal(t, tt.state, strVal(f.State), "state")
			assert.Equal(t, tt.yearMin, intVal(f.YearMin), "year_min")
			assert.Equal(t, tt.yearMax, intVal(f.YearMax), "year_max")
			assert.Equal(t, tt.priceMax, intVal(f.PriceMax), "price_max")
			assert.Equal(t, 20, f.Limit)
		})
	}
}

func TestParse_YearInBoundIsNeverPrice(t *testing.T) {
	p := newTestParser()

	for _, in := range []string{"carro 2018", "quero um 1999", "2024 por favor"} {
		f := p.Parse(in)
		assert.Nil(t, f.PriceMax, "input %q", in)
		require.NotNil(t, f.YearMin, "input %q", in)
	}
}

func TestParse_StateNeedsUpperCase(t *testing.T) {
	p := newTestParser()

	assert.Equal(t, "RJ", strVal(p.Parse("carro no RJ").State))
	assert.Nil(t, p.Parse("carro no rj").State)
	// XX is upper case but not a state
	assert.Nil(t, p.Parse("modelo XX").State)

	// a pair glued to an accented capital is part of a longer word
	for _, in := range []string{"carro PRÉ-2019", "som ACÚSTICO", "SEÇÃO de usados", "XSP", "SP2"} {
		assert.Nil(t, p.Parse(in).State, in)
	}
	assert.Equal(t, "SP", strVal(p.Parse("ÓTIMO carro, SP").State))
	assert.Equal(t, "PR", strVal(p.Parse("(PR)").State))
}

func TestParse_DottedYearIsNotPrice(t *testing.T) {
	p := newTestParser()

	for _, in := range []string{"carro 1.990", "carro 2.020"} {
		f := p.Parse(in)
		assert.Nil(t, f.PriceMax, in)
		assert.Nil(t, f.YearMin, in)
	}
	// outside the year bound the same shape is still a price
	assert.Equal(t, 3500, intVal(p.Parse("carro 3.500").PriceMax))
}

func TestParse_FirstBodyInTableOrderWins(t *testing.T) {
	p := newTestParser()
	f := p.Parse("suv ou hatch")
	assert.Equal(t, "hatch", strVal(f.BodyType))
}

func TestParse_YearOutsideBoundIgnored(t *testing.T) {
	p := New(Config{YearMin: 1990, YearMax: 2020})

	f := p.Parse("de 1950")
	assert.Nil(t, f.YearMin)
	assert.Nil(t, f.YearMax)

	// the range fails as a whole; the in-bound year is backfilled
	f = p.Parse("entre 1950 e 2019")
	assert.Nil(t, f.YearMax)
	assert.Equal(t, 2019, intVal(f.YearMin))
}

func TestParse_DefaultLimitFromConfig(t *testing.T) {
	p := New(Config{DefaultLimit: 7})
	assert.Equal(t, 7, p.Parse("sedan").Limit)
}

func TestParse_ExtraAliases(t *testing.T) {
	p := New(Config{ModelAliases: map[string]string{"Jipinho": "Tracker"}})
	assert.Equal(t, "Tracker", strVal(p.Parse("quero um jipinho").Model))

	// built-in aliases survive the merge
	assert.Equal(t, "HR-V", strVal(p.Parse("hrv").Model))
}

func TestParse_CustomTables(t *testing.T) {
	tables := DefaultTables()
	tables.Makes = []string{"Renault"}
	tables.Models = []string{"Kwid", "Duster"}
	tables.Aliases = map[string]string{}

	p := New(DefaultConfig(), WithTables(tables))
	f := p.Parse("Renault Duster")
	assert.Equal(t, "Renault", strVal(f.Make))
	assert.Equal(t, "Duster", strVal(f.Model))
	assert.Nil(t, p.Parse("Toyota Corolla").Make)
}

type neverPrice struct{}

func (neverPrice) Classify(NumberSpan) Verdict { return VerdictIgnore }

func TestParse_CustomDisambiguator(t *testing.T) {
	p := New(DefaultConfig(), WithDisambiguator(neverPrice{}))

	assert.Nil(t, p.Parse("R$ 45.060,56").PriceMax)
	// marked prices do not go through the policy
	assert.Equal(t, 50000, intVal(p.Parse("até 50.000").PriceMax))
}

func TestParse_ConcurrentCallsAgree(t *testing.T) {
	p := newTestParser()
	want := p.Parse("tcross até 50 mil 2022")

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := p.Parse("tcross até 50 mil 2022")
			if !got.Equal(want) {
				errs <- got.String()
			}
		}()
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Errorf("mismatched parse: %s", e)
	}
}

func TestParse_NeverPanics(t *testing.T) {
	p := newTestParser()
	inputs := []string{
		"R$", "mil", "até", "entre e", "99999999999999999999999 reais",
		"ate 99999999999999999999999", "日本語", "-", "--- ,,, ...", "r$ ,5",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { p.Parse(in) }, "input %q", in)
	}
}

// ==========================
// Suggestion
// ==========================

func TestSuggestion(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		input string
		want  interface{}
	}{
		{"quero HVR", "HR-V"},
		{"quero um HR-V", nil},
		{"honda civc", "Civic"},
		{"honda civic", nil},
		{"um sedan", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := p.Parse(tt.input)
			got, ok := p.Suggestion(tt.input, f)
			if tt.want == nil {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
