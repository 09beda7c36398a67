// internal/workers/data-access/query-vehicles/models.go
package queryvehicles

import "vehicle-search/internal/models"

type Input struct {
	Filters map[string]interface{} `json:"filters"`
}

type Output struct {
	Items              []models.VehicleDTO `json:"items"`
	Total              int                 `json:"total"`
	QueryExecutionTime int64               `json:"queryExecutionTime"` // milliseconds
}
