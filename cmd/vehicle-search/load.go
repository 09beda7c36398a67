// cmd/vehicle-search/load.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vehicle-search/internal/common/database"
	"vehicle-search/internal/models"
	"vehicle-search/internal/queryservice"
)

func loadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.json>",
		Short: "Create the cars table if needed and insert vehicles from a JSON array",
		Long: `Load vehicle records into the configured SQL database.

The file holds a JSON array of objects with the cars columns
(make, model, year, fuel_type, color, mileage_km, price, city, state, ...).
Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vehicles, err := readVehicles(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			db, err := database.NewSQL(a.cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			store := queryservice.NewSQLStore(db.GetDB(), a.cfg.QueryServer.MaxRows)
			if err := store.EnsureSchema(cmd.Context()); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			n, err := store.Insert(cmd.Context(), vehicles)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d vehicles into %s database\n", n, db.Driver)
			return nil
		},
	}
}

func readVehicles(stdin io.Reader, path string) ([]models.Vehicle, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var vehicles []models.Vehicle
	if err := json.NewDecoder(r).Decode(&vehicles); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("%s holds no vehicles", path)
	}
	return vehicles, nil
}
