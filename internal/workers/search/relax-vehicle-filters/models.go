// internal/workers/search/relax-vehicle-filters/models.go
package relaxvehiclefilters

import (
	"vehicle-search/internal/models"
	"vehicle-search/internal/relax"
)

type Input struct {
	Filters *models.FilterSet `json:"filters"`
	Round   int               `json:"round"`
}

type Output struct {
	Filters      models.FilterSet `json:"filters"`
	AppliedSteps []relax.StepName `json:"appliedSteps"`
	Round        int              `json:"round"`
	Exhausted    bool             `json:"exhausted"`
}
