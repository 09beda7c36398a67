// cmd/vehicle-search/parse.go
package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"vehicle-search/internal/models"
	"vehicle-search/internal/relax"
)

type parseResult struct {
	Text           string            `json:"text"`
	Filters        models.FilterSet  `json:"filters"`
	SuggestedModel string            `json:"suggested_model,omitempty"`
	Relaxed        *models.FilterSet `json:"relaxed,omitempty"`
	Steps          []relax.StepName  `json:"steps,omitempty"`
}

func parseCmd(a *app) *cobra.Command {
	var withRelax bool

	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Print the filters extracted from a request",
		Long: `Parse a free-text request offline and print the filter set as JSON.

Example:
  vehicle-search parse "tcross até 50 mil 2022"
  vehicle-search parse --relax "Sedan flex até 80.000 de 2018 pra cima"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			res := parseResult{Text: text, Filters: a.parser.Parse(text)}
			if model, ok := a.parser.Suggestion(text, res.Filters); ok {
				res.SuggestedModel = model
			}
			if withRelax {
				relaxed, report := a.engine.Automated(res.Filters)
				res.Relaxed = &relaxed
				res.Steps = report.Applied()
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().BoolVar(&withRelax, "relax", false, "also show one automated relaxation pass")
	return cmd
}
