// internal/parser/tables.go
package parser

import "strings"

// Canonical values written into a FilterSet.
const (
	BodyHatch  = "hatch"
	BodySedan  = "sedan"
	BodySUV    = "SUV"
	BodyPickup = "pickup"
	BodyCoupe  = "coupe"

	FuelElectric = "elétrico"
	FuelHybrid   = "híbrido"
	FuelDiesel   = "diesel"
	FuelGasoline = "gasolina"
	FuelEthanol  = "etanol"
	FuelFlex     = "flex"
)

// Term pairs a pattern, matched whole-word against normalized text, with
// the canonical value it yields. For fuels the pattern is a regular
// expression fragment; for bodies it is a literal word.
type Term struct {
	Pattern   string
	Canonical string
}

// Tables is the reference data the parser matches against. Order matters
// in every slice: the first entry that matches wins.
type Tables struct {
	Makes   []string
	Models  []string
	Aliases map[string]string
	Bodies  []Term
	Fuels   []Term
	States  []string
}

// DefaultTables returns a fresh copy of the built-in reference data.
func DefaultTables() *Tables {
	return &Tables{
		Makes: []string{"Toyota", "Honda", "Volkswagen", "Chevrolet", "Fiat", "Ford", "Hyundai"},
		Models: []string{
			"Corolla", "Etios", "Yaris", "Hilux", "RAV4",
			"Civic", "Fit", "HR-V", "City",
			"Golf", "Polo", "T-Cross", "Nivus", "Virtus",
			"Onix", "Prisma", "Tracker", "S10",
			"Argo", "Pulse", "Toro", "Cronos",
			"Ka", "Fusion", "Ranger",
			"HB20", "Creta", "Tucson",
		},
		Aliases: map[string]string{
			"hrv":     "HR-V",
			"hvr":     "HR-V",
			"hr v":    "HR-V",
			"tcross":  "T-Cross",
			"t cross": "T-Cross",
		},
		Bodies: []Term{
			{"hatch", BodyHatch},
			{"sedan", BodySedan},
			{"suv", BodySUV},
			{"pickup", BodyPickup},
			{"picape", BodyPickup},
			{"coupe", BodyCoupe},
			{"cupe", BodyCoupe},
		},
		Fuels: []Term{
			{`eletric\w*`, FuelElectric},
			{`hibrid\w*`, FuelHybrid},
			{`diesel`, FuelDiesel},
			{`gasolina`, FuelGasoline},
			{`etanol`, FuelEthanol},
			{`flex`, FuelFlex},
		},
		States: []string{
			"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO",
			"MA", "MT", "MS", "MG", "PA", "PB", "PR", "PE", "PI",
			"RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
		},
	}
}

// WithAliases returns a copy of t whose alias table also holds extra.
// Keys are folded the same way tokens are, so "HR V" and "hr-v" collide.
func (t *Tables) WithAliases(extra map[string]string) *Tables {
	out := *t
	out.Aliases = make(map[string]string, len(t.Aliases)+len(extra))
	for k, v := range t.Aliases {
		out.Aliases[foldToken(k)] = v
	}
	for k, v := range extra {
		if strings.TrimSpace(k) == "" || v == "" {
			continue
		}
		out.Aliases[foldToken(k)] = v
	}
	return &out
}

// foldToken is Normalize plus hyphen folding, the shape model lookups use.
func foldToken(s string) string {
	return strings.ReplaceAll(Normalize(strings.TrimSpace(s)), "-", " ")
}
