// internal/relax/engine.go
package relax

import (
	"fmt"

	"vehicle-search/internal/models"
)

// Config holds the widening parameters.
type Config struct {
	PriceFactor float64 `mapstructure:"price_factor"`
	YearStep    int     `mapstructure:"year_step"`
	YearFloor   int     `mapstructure:"year_floor"`
	MaxRounds   int     `mapstructure:"max_rounds"`
}

func DefaultConfig() Config {
	return Config{
		PriceFactor: 1.2,
		YearStep:    2,
		YearFloor:   1990,
		MaxRounds:   1,
	}
}

// Outcome is what happened to one step during a round.
type Outcome string

const (
	OutcomeApplied       Outcome = "applied"
	OutcomeDeclined      Outcome = "declined"
	OutcomeNotApplicable Outcome = "not_applicable"
)

type StepResult struct {
	Step    StepName `json:"step"`
	Outcome Outcome  `json:"outcome"`
}

// Report lists every step of a round, in order.
type Report struct {
	Steps []StepResult `json:"steps"`
}

// Applied lists the steps that changed the filters.
func (r Report) Applied() []StepName {
	out := make([]StepName, 0, len(r.Steps))
	for _, s := range r.Steps {
		if s.Outcome == OutcomeApplied {
			out = append(out, s.Step)
		}
	}
	return out
}

// Changed reports whether any step was applied.
func (r Report) Changed() bool {
	return len(r.Applied()) > 0
}

// Confirmer answers the yes/no question asked before each step in
// interactive mode.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Engine runs one pass of the widening steps over a FilterSet. It never
// mutates its input and never touches make, model or state.
type Engine struct {
	cfg   Config
	steps []Step
}

func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.PriceFactor < 1 {
		cfg.PriceFactor = def.PriceFactor
	}
	if cfg.YearStep <= 0 {
		cfg.YearStep = def.YearStep
	}
	if cfg.YearFloor <= 0 {
		cfg.YearFloor = def.YearFloor
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = def.MaxRounds
	}
	return &Engine{cfg: cfg, steps: Steps()}
}

func (e *Engine) Config() Config { return e.cfg }

// Automated applies every applicable step.
func (e *Engine) Automated(f models.FilterSet) (models.FilterSet, Report) {
	out, report, _ := e.run(f, nil)
	return out, report
}

// Interactive asks c before each applicable step. A "no" skips the step.
// On a Confirmer error the steps decided so far are kept and the error
// is returned.
func (e *Engine) Interactive(f models.FilterSet, c Confirmer) (models.FilterSet, Report, error) {
	if c == nil {
		return f.Clone(), Report{}, fmt.Errorf("relax: nil confirmer")
	}
	return e.run(f, c)
}

func (e *Engine) run(f models.FilterSet, c Confirmer) (models.FilterSet, Report, error) {
	cur := f.Clone()
	report := Report{Steps: make([]StepResult, 0, len(e.steps))}

	for _, step := range e.steps {
		if !step.Applicable(cur) {
			report.Steps = append(report.Steps, StepResult{Step: step.Name, Outcome: OutcomeNotApplicable})
			continue
		}
		if c != nil {
			ok, err := c.Confirm(step.Prompt)
			if err != nil {
				return cur, report, fmt.Errorf("relax: confirm %s: %w", step.Name, err)
			}
			if !ok {
				report.Steps = append(report.Steps, StepResult{Step: step.Name, Outcome: OutcomeDeclined})
				continue
			}
		}
		cur = step.Apply(cur, e.cfg)
		report.Steps = append(report.Steps, StepResult{Step: step.Name, Outcome: OutcomeApplied})
	}
	return cur, report, nil
}
