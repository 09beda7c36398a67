package queryservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"vehicle-search/internal/models"
)

const vehicleColumns = "id, make, model, year, engine_cc, fuel_type, color, mileage_km, doors, " +
	"transmission, body_type, drivetrain, price, city, state, vin"

// SQLStore queries the cars table through sqlx. Placeholders are
// rebound for the driver, so the same code serves Postgres and SQLite.
type SQLStore struct {
	db      *sqlx.DB
	maxRows int
}

func NewSQLStore(db *sqlx.DB, maxRows int) *SQLStore {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &SQLStore{db: db, maxRows: maxRows}
}

func (s *SQLStore) Query(ctx context.Context, q models.VehicleQuery) ([]models.Vehicle, error) {
	query, args := buildSQL(q, s.maxRows)
	var rows []models.Vehicle
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Vehicle{}
	}
	return rows, nil
}

// buildSQL renders the filter as a parameterised SELECT with ? placeholders.
func buildSQL(q models.VehicleQuery, maxRows int) (string, []interface{}) {
	var where []string
	var args []interface{}

	like := func(column string, v *string) {
		if s, ok := nonEmpty(v); ok {
			where = append(where, fmt.Sprintf("LOWER(%s) LIKE ?", column))
			args = append(args, "%"+strings.ToLower(s)+"%")
		}
	}
	bound := func(clause string, v interface{}) {
		where = append(where, clause)
		args = append(args, v)
	}

	like("make", q.Make)
	like("model", q.Model)
	like("fuel_type", q.FuelType)
	like("transmission", q.Transmission)
	like("body_type", q.BodyType)
	like("color", q.Color)
	like("city", q.City)
	like("state", q.State)
	if q.YearMin != nil {
		bound("year >= ?", *q.YearMin)
	}
	if q.YearMax != nil {
		bound("year <= ?", *q.YearMax)
	}
	if q.PriceMin != nil {
		bound("price >= ?", *q.PriceMin)
	}
	if q.PriceMax != nil {
		bound("price <= ?", float64(*q.PriceMax))
	}
	if q.MileageMax != nil {
		bound("mileage_km <= ?", *q.MileageMax)
	}

	var b strings.Builder
	b.WriteString("SELECT " + vehicleColumns + " FROM cars")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY id LIMIT ?")
	args = append(args, rowLimit(q, maxRows))
	return b.String(), args
}

// EnsureSchema creates the cars table when it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.db.DriverName() == "postgres" {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}
	ddl := `CREATE TABLE IF NOT EXISTS cars (
		` + idColumn + `,
		make VARCHAR(50) NOT NULL,
		model VARCHAR(80) NOT NULL,
		year INTEGER NOT NULL,
		engine_cc INTEGER NOT NULL DEFAULT 0,
		fuel_type VARCHAR(20) NOT NULL DEFAULT '',
		color VARCHAR(30) NOT NULL DEFAULT '',
		mileage_km INTEGER NOT NULL DEFAULT 0,
		doors INTEGER NOT NULL DEFAULT 4,
		transmission VARCHAR(20) NOT NULL DEFAULT '',
		body_type VARCHAR(20) NOT NULL DEFAULT '',
		drivetrain VARCHAR(10) NOT NULL DEFAULT '',
		price NUMERIC(12,2) NOT NULL DEFAULT 0,
		city VARCHAR(60) NOT NULL DEFAULT '',
		state VARCHAR(2) NOT NULL DEFAULT '',
		vin VARCHAR(32) NOT NULL DEFAULT ''
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create cars table: %w", err)
	}
	return nil
}

const insertVehicle = `INSERT INTO cars (make, model, year, engine_cc, fuel_type, color, mileage_km, doors,
	transmission, body_type, drivetrain, price, city, state, vin)
	VALUES (:make, :model, :year, :engine_cc, :fuel_type, :color, :mileage_km, :doors,
	:transmission, :body_type, :drivetrain, :price, :city, :state, :vin)`

// Insert adds vehicles in one transaction. Ids are assigned by the database.
func (s *SQLStore) Insert(ctx context.Context, vehicles []models.Vehicle) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for i, v := range vehicles {
		if _, err := tx.NamedExecContext(ctx, insertVehicle, v); err != nil {
			return 0, fmt.Errorf("insert vehicle %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(vehicles), nil
}
