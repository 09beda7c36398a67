// internal/models/filters.go
package models

import (
	"encoding/json"
	"sort"
)

// DefaultLimit is applied to every FilterSet that does not carry its own limit.
const DefaultLimit = 20

// Field names as they appear on the wire.
const (
	FieldMake     = "make"
	FieldModel    = "model"
	FieldBodyType = "body_type"
	FieldFuelType = "fuel_type"
	FieldState    = "state"
	FieldYearMin  = "year_min"
	FieldYearMax  = "year_max"
	FieldPriceMax = "price_max"
	FieldLimit    = "limit"
)

// FilterSet is the structured search derived from one piece of free text.
// A nil field means "unconstrained". Values are never mutated in place:
// derive a new set with Clone and the With*/Without* helpers.
type FilterSet struct {
	Make     *string `json:"make,omitempty"`
	Model    *string `json:"model,omitempty"`
	BodyType *string `json:"body_type,omitempty"`
	FuelType *string `json:"fuel_type,omitempty"`
	State    *string `json:"state,omitempty"`
	YearMin  *int    `json:"year_min,omitempty"`
	YearMax  *int    `json:"year_max,omitempty"`
	PriceMax *int    `json:"price_max,omitempty"`
	Limit    int     `json:"limit"`
}

// NewFilterSet returns an empty set carrying only the default limit.
func NewFilterSet() FilterSet {
	return FilterSet{Limit: DefaultLimit}
}

func String(s string) *string { return &s }

func Int(i int) *int { return &i }

// Clone returns a deep copy.
func (f FilterSet) Clone() FilterSet {
	return FilterSet{
		Make:     cloneString(f.Make),
		Model:    cloneString(f.Model),
		BodyType: cloneString(f.BodyType),
		FuelType: cloneString(f.FuelType),
		State:    cloneString(f.State),
		YearMin:  cloneInt(f.YearMin),
		YearMax:  cloneInt(f.YearMax),
		PriceMax: cloneInt(f.PriceMax),
		Limit:    f.Limit,
	}
}

func (f FilterSet) WithPriceMax(v int) FilterSet {
	out := f.Clone()
	out.PriceMax = Int(v)
	return out
}

func (f FilterSet) WithYearMin(v int) FilterSet {
	out := f.Clone()
	out.YearMin = Int(v)
	return out
}

func (f FilterSet) WithoutFuelType() FilterSet {
	out := f.Clone()
	out.FuelType = nil
	return out
}

func (f FilterSet) WithoutBodyType() FilterSet {
	out := f.Clone()
	out.BodyType = nil
	return out
}

// Has reports whether the named field is present.
func (f FilterSet) Has(field string) bool {
	switch field {
	case FieldMake:
		return f.Make != nil
	case FieldModel:
		return f.Model != nil
	case FieldBodyType:
		return f.BodyType != nil
	case FieldFuelType:
		return f.FuelType != nil
	case FieldState:
		return f.State != nil
	case FieldYearMin:
		return f.YearMin != nil
	case FieldYearMax:
		return f.YearMax != nil
	case FieldPriceMax:
		return f.PriceMax != nil
	case FieldLimit:
		return true
	}
	return false
}

// Fields lists the present field names in sorted order.
func (f FilterSet) Fields() []string {
	all := []string{
		FieldMake, FieldModel, FieldBodyType, FieldFuelType, FieldState,
		FieldYearMin, FieldYearMax, FieldPriceMax, FieldLimit,
	}
	out := make([]string, 0, len(all))
	for _, name := range all {
		if f.Has(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Equal compares two sets field by field.
func (f FilterSet) Equal(o FilterSet) bool {
	return eqString(f.Make, o.Make) &&
		eqString(f.Model, o.Model) &&
		eqString(f.BodyType, o.BodyType) &&
		eqString(f.FuelType, o.FuelType) &&
		eqString(f.State, o.State) &&
		eqInt(f.YearMin, o.YearMin) &&
		eqInt(f.YearMax, o.YearMax) &&
		eqInt(f.PriceMax, o.PriceMax) &&
		f.Limit == o.Limit
}

// ToMap renders the set as a plain map, the shape used in job variables and logs.
func (f FilterSet) ToMap() map[string]interface{} {
	out := map[string]interface{}{FieldLimit: f.Limit}
	setS := func(k string, v *string) {
		if v != nil {
			out[k] = *v
		}
	}
	setI := func(k string, v *int) {
		if v != nil {
			out[k] = *v
		}
	}
	setS(FieldMake, f.Make)
	setS(FieldModel, f.Model)
	setS(FieldBodyType, f.BodyType)
	setS(FieldFuelType, f.FuelType)
	setS(FieldState, f.State)
	setI(FieldYearMin, f.YearMin)
	setI(FieldYearMax, f.YearMax)
	setI(FieldPriceMax, f.PriceMax)
	return out
}

// String renders the set as compact JSON.
func (f FilterSet) String() string {
	b, err := json.Marshal(f)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// UnmarshalJSON defaults the limit when the payload omits it.
func (f *FilterSet) UnmarshalJSON(data []byte) error {
	type alias FilterSet
	aux := alias{Limit: DefaultLimit}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = FilterSet(aux)
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	return nil
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func eqString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
