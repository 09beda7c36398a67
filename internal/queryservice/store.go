// Package queryservice serves vehicle queries over the JSON-Lines
// protocol, backed by a SQL database or an Elasticsearch index, with an
// optional Redis result cache in front.
package queryservice

import (
	"context"

	"vehicle-search/internal/models"
)

// DefaultMaxRows caps every result regardless of the requested limit.
const DefaultMaxRows = 100

// Store runs a vehicle query.
type Store interface {
	Query(ctx context.Context, q models.VehicleQuery) ([]models.Vehicle, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc func(ctx context.Context, q models.VehicleQuery) ([]models.Vehicle, error)

func (f StoreFunc) Query(ctx context.Context, q models.VehicleQuery) ([]models.Vehicle, error) {
	return f(ctx, q)
}

// rowLimit is maxRows, lowered by the query's own positive limit.
func rowLimit(q models.VehicleQuery, maxRows int) int {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	if q.Limit > 0 && q.Limit < maxRows {
		return q.Limit
	}
	return maxRows
}

func nonEmpty(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}
