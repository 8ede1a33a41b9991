// Package seed populates an empty store with a fixed sample fleet so a fresh
// deployment has data to exercise the API against.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cabfleet/taxi-api/internal/domain"
)

// store is the subset of taxi operations seeding needs. *service.TaxiService
// satisfies it, so seeded records get the same forced zeros and change events
// as API-created ones.
type store interface {
	Count(ctx context.Context, filter domain.TaxiFilter) (int64, error)
	InsertMany(ctx context.Context, taxis []domain.Taxi) ([]domain.Taxi, error)
}

// fleet is the deterministic sample data inserted into an empty store.
// Only maker, model, year, and color are populated; everything else takes
// creation defaults.
var fleet = []domain.Taxi{
	{Maker: "Toyota", Model: "Prius", Year: 2018, Color: "white"},
	{Maker: "Toyota", Model: "Corolla", Year: 2016, Color: "silver"},
	{Maker: "Skoda", Model: "Octavia", Year: 2019, Color: "black"},
	{Maker: "Skoda", Model: "Superb", Year: 2020, Color: "grey"},
	{Maker: "Volkswagen", Model: "Passat", Year: 2017, Color: "blue"},
	{Maker: "Volkswagen", Model: "Touran", Year: 2015, Color: "white"},
	{Maker: "Mercedes-Benz", Model: "E-Class", Year: 2021, Color: "black"},
	{Maker: "Ford", Model: "Mondeo", Year: 2014, Color: "red"},
	{Maker: "Hyundai", Model: "i40", Year: 2018, Color: "silver"},
	{Maker: "Dacia", Model: "Logan", Year: 2013, Color: "yellow"},
}

// EnsureFleet inserts the sample fleet when the store holds no taxis at all.
// A non-empty store is left untouched.
func EnsureFleet(ctx context.Context, s store, log *slog.Logger) error {
	n, err := s.Count(ctx, domain.TaxiFilter{})
	if err != nil {
		return fmt.Errorf("seed.EnsureFleet: count: %w", err)
	}
	if n > 0 {
		return nil
	}

	inserted, err := s.InsertMany(ctx, fleet)
	if err != nil {
		return fmt.Errorf("seed.EnsureFleet: insert: %w", err)
	}
	log.InfoContext(ctx, "seeded empty store with sample fleet", "count", len(inserted))
	return nil
}
