// internal/relax/steps.go
package relax

import (
	"math"

	"vehicle-search/internal/models"
)

type StepName string

const (
	StepWidenPrice     StepName = "widen-price"
	StepWidenYearFloor StepName = "widen-year-floor"
	StepDropFuel       StepName = "drop-fuel"
	StepDropBody       StepName = "drop-body"
)

// Step is one widening rule. Apply is total: when Field is absent it
// returns the set unchanged.
type Step struct {
	Name   StepName
	Field  string
	Prompt string
	apply  func(f models.FilterSet, cfg Config) models.FilterSet
}

// Applicable reports whether the step would touch f.
func (s Step) Applicable(f models.FilterSet) bool {
	return f.Has(s.Field)
}

func (s Step) Apply(f models.FilterSet, cfg Config) models.FilterSet {
	if !s.Applicable(f) {
		return f.Clone()
	}
	return s.apply(f, cfg)
}

// Steps returns the widening rules in the order they are tried.
func Steps() []Step {
	return []Step{
		{
			Name:   StepWidenPrice,
			Field:  models.FieldPriceMax,
			Prompt: "Posso aumentar o teto de preço em ~20%?",
			apply: func(f models.FilterSet, cfg Config) models.FilterSet {
				return f.WithPriceMax(widenPrice(*f.PriceMax, cfg.PriceFactor))
			},
		},
		{
			Name:   StepWidenYearFloor,
			Field:  models.FieldYearMin,
			Prompt: "Quer considerar 1–2 anos mais antigos?",
			apply: func(f models.FilterSet, cfg Config) models.FilterSet {
				return f.WithYearMin(lowerYearFloor(*f.YearMin, cfg.YearStep, cfg.YearFloor))
			},
		},
		{
			Name:   StepDropFuel,
			Field:  models.FieldFuelType,
			Prompt: "Tiro a preferência de combustível para ampliar opções?",
			apply: func(f models.FilterSet, _ Config) models.FilterSet {
				return f.WithoutFuelType()
			},
		},
		{
			Name:   StepDropBody,
			Field:  models.FieldBodyType,
			Prompt: "Posso considerar outras carrocerias além da escolhida?",
			apply: func(f models.FilterSet, _ Config) models.FilterSet {
				return f.WithoutBodyType()
			},
		},
	}
}

// widenPrice scales in whole percents so 50000*1.2 is exactly 60000;
// the result is truncated and never below price.
func widenPrice(price int, factor float64) int {
	percent := int(math.Round(factor * 100))
	if percent <= 100 || price <= 0 {
		return price
	}
	if price > math.MaxInt/percent {
		return price
	}
	return price * percent / 100
}

// lowerYearFloor moves yearMin down by step but not below floor, and
// never above where it already was.
func lowerYearFloor(yearMin, step, floor int) int {
	next := yearMin - step
	if next < floor {
		next = floor
	}
	if next > yearMin {
		return yearMin
	}
	return next
}
