// internal/models/vehicle.go
package models

import "encoding/json"

// Vehicle is one row of the cars table.
type Vehicle struct {
	ID           int64   `json:"id" db:"id"`
	Make         string  `json:"make" db:"make"`
	Model        string  `json:"model" db:"model"`
	Year         int     `json:"year" db:"year"`
	EngineCC     int     `json:"engine_cc" db:"engine_cc"`
	FuelType     string  `json:"fuel_type" db:"fuel_type"`
	Color        string  `json:"color" db:"color"`
	MileageKM    int     `json:"mileage_km" db:"mileage_km"`
	Doors        int     `json:"doors" db:"doors"`
	Transmission string  `json:"transmission" db:"transmission"`
	BodyType     string  `json:"body_type" db:"body_type"`
	Drivetrain   string  `json:"drivetrain" db:"drivetrain"`
	Price        float64 `json:"price" db:"price"`
	City         string  `json:"city" db:"city"`
	State        string  `json:"state" db:"state"`
	VIN          string  `json:"vin" db:"vin"`
}

// VehicleDTO is the projection sent back to clients.
type VehicleDTO struct {
	ID        int64   `json:"id"`
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	Year      int     `json:"year"`
	Color     string  `json:"color"`
	MileageKM int     `json:"mileage_km"`
	Price     float64 `json:"price"`
}

func (v Vehicle) DTO() VehicleDTO {
	return VehicleDTO{
		ID:        v.ID,
		Make:      v.Make,
		Model:     v.Model,
		Year:      v.Year,
		Color:     v.Color,
		MileageKM: v.MileageKM,
		Price:     v.Price,
	}
}

// VehicleQuery is everything the Query Service accepts. It embeds the
// FilterSet produced by the parser and adds the storage-only bounds.
type VehicleQuery struct {
	FilterSet
	Transmission *string  `json:"transmission,omitempty"`
	Color        *string  `json:"color,omitempty"`
	City         *string  `json:"city,omitempty"`
	PriceMin     *float64 `json:"price_min,omitempty"`
	MileageMax   *int     `json:"mileage_max,omitempty"`
}

// UnmarshalJSON decodes both halves. Without it the promoted
// FilterSet.UnmarshalJSON would swallow the storage-only fields.
func (q *VehicleQuery) UnmarshalJSON(data []byte) error {
	var fs FilterSet
	if err := json.Unmarshal(data, &fs); err != nil {
		return err
	}
	var extra struct {
		Transmission *string  `json:"transmission"`
		Color        *string  `json:"color"`
		City         *string  `json:"city"`
		PriceMin     *float64 `json:"price_min"`
		MileageMax   *int     `json:"mileage_max"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}
	q.FilterSet = fs
	q.Transmission = extra.Transmission
	q.Color = extra.Color
	q.City = extra.City
	q.PriceMin = extra.PriceMin
	q.MileageMax = extra.MileageMax
	return nil
}

// QueryResult is the decoded result payload.
type QueryResult struct {
	Items []VehicleDTO `json:"items"`
	Total int          `json:"total"`
}

func NewQueryResult(vehicles []Vehicle) QueryResult {
	items := make([]VehicleDTO, 0, len(vehicles))
	for _, v := range vehicles {
		items = append(items, v.DTO())
	}
	return QueryResult{Items: items, Total: len(items)}
}
