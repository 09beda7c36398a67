// internal/workers/search/parse-vehicle-query/models.go
package parsevehiclequery

import "vehicle-search/internal/models"

type Input struct {
	Text string `json:"text"`
}

type Output struct {
	Filters        models.FilterSet `json:"filters"`
	SuggestedModel string           `json:"suggestedModel,omitempty"`
}
