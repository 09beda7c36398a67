// Package search runs the automated pipeline: parse the text, query,
// and while nothing comes back relax the filters and query again.
package search

import (
	"context"
	"time"

	"vehicle-search/internal/common/logger"
	"vehicle-search/internal/common/metrics"
	"vehicle-search/internal/models"
	"vehicle-search/internal/parser"
	"vehicle-search/internal/relax"
)

// Querier runs a filter set against the Query Service.
type Querier interface {
	Query(ctx context.Context, f models.FilterSet) (models.QueryResult, error)
}

// Round is one query. Round 0 runs the parsed filters and has no report.
type Round struct {
	Index   int              `json:"index"`
	Filters models.FilterSet `json:"filters"`
	Report  *relax.Report    `json:"report,omitempty"`
	Total   int              `json:"total"`
}

// Outcome is everything a search produced.
type Outcome struct {
	Text           string              `json:"text"`
	Parsed         models.FilterSet    `json:"parsed"`
	SuggestedModel string              `json:"suggested_model,omitempty"`
	Rounds         []Round             `json:"rounds"`
	Final          models.FilterSet    `json:"final"`
	Items          []models.VehicleDTO `json:"items"`
	Total          int                 `json:"total"`
	ElapsedMs      int64               `json:"elapsed_ms"`
}

// Relaxed reports whether the final filters differ from the parsed ones.
func (o Outcome) Relaxed() bool {
	return !o.Final.Equal(o.Parsed)
}

type Service struct {
	parser  *parser.Parser
	relax   *relax.Engine
	querier Querier
	logger  logger.Logger
}

func NewService(p *parser.Parser, r *relax.Engine, q Querier, log logger.Logger) *Service {
	return &Service{
		parser:  p,
		relax:   r,
		querier: q,
		logger:  log.WithFields(map[string]interface{}{"component": "search"}),
	}
}

// Search uses the engine's configured round limit.
func (s *Service) Search(ctx context.Context, text string) (Outcome, error) {
	return s.SearchRounds(ctx, text, s.relax.Config().MaxRounds)
}

// SearchRounds relaxes at most maxRounds times. It stops early when a
// round applies no step or leaves the filters as they were. On a query
// error the outcome so far is returned with the error.
func (s *Service) SearchRounds(ctx context.Context, text string, maxRounds int) (out Outcome, err error) {
	start := time.Now()
	parsed := s.parser.Parse(text)
	metrics.RecordParse(parsed)

	out = Outcome{Text: text, Parsed: parsed, Final: parsed, Items: []models.VehicleDTO{}}
	if model, ok := s.parser.Suggestion(text, parsed); ok {
		out.SuggestedModel = model
	}
	defer func() { out.ElapsedMs = time.Since(start).Milliseconds() }()

	s.logger.Info("search", map[string]interface{}{"text": text, "filters": parsed.String()})

	res, err := s.querier.Query(ctx, parsed)
	if err != nil {
		return out, err
	}
	if res.Items == nil {
		res.Items = []models.VehicleDTO{}
	}
	out.Rounds = append(out.Rounds, Round{Index: 0, Filters: parsed, Total: res.Total})
	out.Items, out.Total = res.Items, res.Total

	cur := parsed
	for round := 1; out.Total == 0 && round <= maxRounds; round++ {
		next, report := s.relax.Automated(cur)
		RecordReport(report)
		if !report.Changed() || next.Equal(cur) {
			break
		}
		cur = next

		s.logger.Info("relaxed", map[string]interface{}{
			"round":   round,
			"applied": report.Applied(),
			"filters": cur.String(),
		})

		res, err := s.querier.Query(ctx, cur)
		if err != nil {
			out.Final = cur
			return out, err
		}
		if res.Items == nil {
			res.Items = []models.VehicleDTO{}
		}
		rep := report
		out.Rounds = append(out.Rounds, Round{Index: round, Filters: cur, Report: &rep, Total: res.Total})
		out.Final = cur
		out.Items, out.Total = res.Items, res.Total
	}
	return out, nil
}

// RecordReport counts every step outcome of a relaxation round.
func RecordReport(r relax.Report) {
	for _, st := range r.Steps {
		metrics.RecordRelaxStep(string(st.Step), string(st.Outcome))
	}
}
