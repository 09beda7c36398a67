package queryservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"vehicle-search/internal/models"
)

// ElasticStore queries a vehicles index. Text fields use match clauses,
// numeric bounds use range filters.
type ElasticStore struct {
	client  *elasticsearch.Client
	index   string
	maxRows int
}

func NewElasticStore(client *elasticsearch.Client, index string, maxRows int) *ElasticStore {
	if index == "" {
		index = "vehicles"
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &ElasticStore{client: client, index: index, maxRows: maxRows}
}

func (s *ElasticStore) Query(ctx context.Context, q models.VehicleQuery) ([]models.Vehicle, error) {
	body, err := json.Marshal(buildSearch(q))
	if err != nil {
		return nil, err
	}
	size := rowLimit(q, s.maxRows)
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
		Sort:  []string{"id:asc"},
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]models.Vehicle, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.Vehicle `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildSearch(q models.VehicleQuery) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	match := func(field string, v *string) {
		if s, ok := nonEmpty(v); ok {
			must = append(must, map[string]interface{}{
				"match": map[string]interface{}{
					field: map[string]interface{}{"query": strings.ToLower(s), "operator": "and"},
				},
			})
		}
	}
	rng := func(field, op string, v interface{}) {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{field: map[string]interface{}{op: v}},
		})
	}

	match("make", q.Make)
	match("model", q.Model)
	match("fuel_type", q.FuelType)
	match("transmission", q.Transmission)
	match("body_type", q.BodyType)
	match("color", q.Color)
	match("city", q.City)
	match("state", q.State)
	if q.YearMin != nil {
		rng("year", "gte", *q.YearMin)
	}
	if q.YearMax != nil {
		rng("year", "lte", *q.YearMax)
	}
	if q.PriceMin != nil {
		rng("price", "gte", *q.PriceMin)
	}
	if q.PriceMax != nil {
		rng("price", "lte", *q.PriceMax)
	}
	if q.MileageMax != nil {
		rng("mileage_km", "lte", *q.MileageMax)
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
}
