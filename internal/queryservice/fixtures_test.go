package queryservice

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vehicle-search/internal/common/config"
	"vehicle-search/internal/common/database"
	"vehicle-search/internal/models"
)

func fixtureVehicles() []models.Vehicle {
	return []models.Vehicle{
		{Make: "Toyota", Model: "Corolla", Year: 2020, FuelType: "flex", Color: "Prata", MileageKM: 30000,
			Transmission: "automático", BodyType: "sedan", Price: 95000, City: "São Paulo", State: "SP"},
		{Make: "Honda", Model: "HR-V", Year: 2019, FuelType: "flex", Color: "Preto", MileageKM: 45000,
			Transmission: "automático", BodyType: "SUV", Price: 98000, City: "Campinas", State: "SP"},
		{Make: "Fiat", Model: "Toro", Year: 2018, FuelType: "diesel", Color: "Branco", MileageKM: 80000,
			Transmission: "manual", BodyType: "pickup", Price: 89000, City: "Curitiba", State: "PR"},
		{Make: "Volkswagen", Model: "T-Cross", Year: 2022, FuelType: "flex", Color: "Cinza", MileageKM: 12000,
			Transmission: "automático", BodyType: "SUV", Price: 118000, City: "Belo Horizonte", State: "MG"},
		{Make: "Chevrolet", Model: "Onix", Year: 2016, FuelType: "flex", Color: "Vermelho", MileageKM: 90000,
			Transmission: "manual", BodyType: "hatch", Price: 52000, City: "Rio de Janeiro", State: "RJ"},
	}
}

// newSQLiteStore returns a store over a fresh, seeded SQLite file.
func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	client, err := database.NewSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "cars.db")})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	store := NewSQLStore(client.GetDB(), DefaultMaxRows)
	require.NoError(t, store.EnsureSchema(context.Background()))
	n, err := store.Insert(context.Background(), fixtureVehicles())
	require.NoError(t, err)
	require.Equal(t, len(fixtureVehicles()), n)
	return store
}
