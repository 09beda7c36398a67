// internal/parser/parser.go
package parser

import (
	"strings"

	"vehicle-search/internal/models"
)

// Config tunes the parser. Zero values fall back to the defaults.
type Config struct {
	YearMin      int               `mapstructure:"year_min"`
	YearMax      int               `mapstructure:"year_max"`
	FuzzyCutoff  float64           `mapstructure:"fuzzy_cutoff"`
	DefaultLimit int               `mapstructure:"default_limit"`
	ModelAliases map[string]string `mapstructure:"model_aliases"`
}

func DefaultConfig() Config {
	return Config{
		YearMin:      1900,
		YearMax:      2025,
		FuzzyCutoff:  DefaultFuzzyCutoff,
		DefaultLimit: models.DefaultLimit,
	}
}

type Option func(*Parser)

// WithTables replaces the built-in reference data.
func WithTables(t *Tables) Option {
	return func(p *Parser) {
		if t != nil {
			p.tables = t
		}
	}
}

// WithDisambiguator replaces the year-or-price policy for unmarked numbers.
func WithDisambiguator(d Disambiguator) Option {
	return func(p *Parser) { p.disambiguator = d }
}

// Parser turns free text into a FilterSet. It holds only read-only data
// after New returns and is safe for concurrent use.
type Parser struct {
	cfg           Config
	tables        *Tables
	disambiguator Disambiguator
	matchers      *matchers
	resolver      *ModelResolver
	years         yearBound
}

func New(cfg Config, opts ...Option) *Parser {
	def := DefaultConfig()
	if cfg.YearMin <= 0 {
		cfg.YearMin = def.YearMin
	}
	if cfg.YearMax <= 0 {
		cfg.YearMax = def.YearMax
	}
	if cfg.YearMin > cfg.YearMax {
		cfg.YearMin, cfg.YearMax = cfg.YearMax, cfg.YearMin
	}
	if cfg.FuzzyCutoff <= 0 || cfg.FuzzyCutoff > 1 {
		cfg.FuzzyCutoff = def.FuzzyCutoff
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}

	p := &Parser{cfg: cfg, tables: DefaultTables()}
	for _, opt := range opts {
		opt(p)
	}
	if len(cfg.ModelAliases) > 0 {
		p.tables = p.tables.WithAliases(cfg.ModelAliases)
	}
	if p.disambiguator == nil {
		p.disambiguator = YearOrPrice{YearMin: cfg.YearMin, YearMax: cfg.YearMax}
	}
	p.matchers = newMatchers(p.tables)
	p.resolver = NewModelResolver(p.tables, cfg.FuzzyCutoff)
	p.years = yearBound{min: cfg.YearMin, max: cfg.YearMax}
	return p
}

func (p *Parser) Config() Config { return p.cfg }

// Parse never fails: text that yields nothing gives a set holding only
// the default limit.
func (p *Parser) Parse(text string) models.FilterSet {
	out := models.FilterSet{Limit: p.cfg.DefaultLimit}
	raw := strings.TrimSpace(text)
	if raw == "" {
		return out
	}
	normalized := Normalize(raw)

	if v, ok := p.matchers.findBody(normalized); ok {
		out.BodyType = models.String(v)
	}
	if v, ok := p.matchers.findFuel(normalized); ok {
		out.FuelType = models.String(v)
	}
	if v, ok := p.matchers.findMake(normalized); ok {
		out.Make = models.String(v)
	}
	if v, ok := p.resolver.Resolve(raw); ok {
		out.Model = models.String(v)
	}
	if v, ok := p.matchers.findState(raw); ok {
		out.State = models.String(v)
	}

	years := p.years.extract(normalized)
	out.YearMin, out.YearMax = years.min, years.max
	used := years.used

	if price, s, ok := markedPriceOf(normalized, used); ok {
		out.PriceMax = models.Int(price)
		used = append(used, s)
	} else {
		for _, n := range bareNumbers(normalized, used) {
			if p.disambiguator.Classify(n) == VerdictPrice {
				out.PriceMax = models.Int(n.Value)
				used = append(used, span{n.start, n.end})
				break
			}
		}
	}

	if out.YearMin == nil && out.YearMax == nil {
		if y, ok := p.years.lastFreeYear(normalized, used); ok {
			out.YearMin = models.Int(y)
		}
	}
	return out
}

// Suggestion returns the model to offer back as "did you mean" when the
// resolved model does not literally appear in what the user typed.
func (p *Parser) Suggestion(text string, f models.FilterSet) (string, bool) {
	if f.Model == nil {
		return "", false
	}
	if strings.Contains(foldToken(text), foldToken(*f.Model)) {
		return "", false
	}
	return *f.Model, true
}
