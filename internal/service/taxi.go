// Package service contains the business logic for the taxi fleet API.
// Services validate inputs, apply the field-mutation rules for each fleet
// action, and orchestrate repo calls. No SQL lives here — services depend on
// repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cabfleet/taxi-api/internal/domain"
	"github.com/cabfleet/taxi-api/internal/geo"
	"github.com/cabfleet/taxi-api/internal/notify"
	"github.com/cabfleet/taxi-api/internal/repo"
)

// TaxiService implements all taxi operations: generic CRUD plus the four
// fleet actions (assign driver, register trip, update position, find nearby).
// Every successful mutation emits exactly one change notification.
type TaxiService struct {
	repo     repo.TaxiRepo
	notifier notify.Notifier
}

// NewTaxiService constructs a TaxiService backed by the provided repo and notifier.
func NewTaxiService(r repo.TaxiRepo, n notify.Notifier) *TaxiService {
	return &TaxiService{repo: r, notifier: n}
}

// Create validates and persists a new taxi.
// DriverID and all trip counters are forced to their zero values regardless
// of what the caller supplied; RegisterDate defaults to now when unset and is
// immutable afterwards.
func (s *TaxiService) Create(ctx context.Context, taxi domain.Taxi) (domain.Taxi, error) {
	if err := validateDescriptive(taxi); err != nil {
		return domain.Taxi{}, err
	}

	forceCreationZeros(&taxi)

	created, err := s.repo.Create(ctx, taxi)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("service.TaxiService.Create: %w", err)
	}
	s.notifier.Changed(ctx, domain.EventCreated, created)
	return created, nil
}

// InsertMany validates and persists a batch of taxis in one store call,
// applying the same forced zeros as Create to every record.
// Returns domain.ErrValidation naming the offending index if any record is invalid.
func (s *TaxiService) InsertMany(ctx context.Context, taxis []domain.Taxi) ([]domain.Taxi, error) {
	for i := range taxis {
		if err := validateDescriptive(taxis[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		forceCreationZeros(&taxis[i])
	}

	inserted, err := s.repo.InsertMany(ctx, taxis)
	if err != nil {
		return nil, fmt.Errorf("service.TaxiService.InsertMany: %w", err)
	}
	for _, taxi := range inserted {
		s.notifier.Changed(ctx, domain.EventCreated, taxi)
	}
	return inserted, nil
}

// Get returns a single taxi by ID.
func (s *TaxiService) Get(ctx context.Context, id uuid.UUID) (domain.Taxi, error) {
	taxi, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("service.TaxiService.Get: %w", err)
	}
	return taxi, nil
}

// List returns taxis matching the filter, paginated, in insertion order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TaxiService) List(ctx context.Context, filter domain.TaxiFilter, page domain.PaginationParams) ([]domain.Taxi, error) {
	taxis, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("service.TaxiService.List: %w", err)
	}
	if taxis == nil {
		return []domain.Taxi{}, nil
	}
	return taxis, nil
}

// Count returns the number of taxis matching the filter.
func (s *TaxiService) Count(ctx context.Context, filter domain.TaxiFilter) (int64, error) {
	n, err := s.repo.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("service.TaxiService.Count: %w", err)
	}
	return n, nil
}

// Update replaces the descriptive fields (maker, model, color, year) of an
// existing taxi. RegisterDate, DriverID, and the trip counters are not
// caller-writable through this path.
func (s *TaxiService) Update(ctx context.Context, id uuid.UUID, taxi domain.Taxi) (domain.Taxi, error) {
	if err := validateDescriptive(taxi); err != nil {
		return domain.Taxi{}, err
	}

	patch := domain.TaxiPatch{
		Maker: &taxi.Maker,
		Model: &taxi.Model,
		Color: &taxi.Color,
		Year:  &taxi.Year,
	}
	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("service.TaxiService.Update: %w", err)
	}
	s.notifier.Changed(ctx, domain.EventUpdated, updated)
	return updated, nil
}

// Remove deletes a taxi by ID and emits a removed event carrying the record.
func (s *TaxiService) Remove(ctx context.Context, id uuid.UUID) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TaxiService.Remove: %w", err)
	}
	s.notifier.Changed(ctx, domain.EventRemoved, removed)
	return nil
}

// AssignDriver sets DriverID on the taxi identified by id. There is no
// existence check beyond the update itself: a missing id surfaces as the
// store's domain.ErrNotFound.
func (s *TaxiService) AssignDriver(ctx context.Context, id uuid.UUID, driverID string) (domain.Taxi, error) {
	if strings.TrimSpace(driverID) == "" {
		return domain.Taxi{}, fmt.Errorf("%w: idDriver is required", domain.ErrValidation)
	}

	updated, err := s.repo.UpdateByID(ctx, id, domain.TaxiPatch{DriverID: &driverID})
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("service.TaxiService.AssignDriver: %w", err)
	}
	s.notifier.Changed(ctx, domain.EventUpdated, updated)
	return updated, nil
}

// RegisterTrip records one completed trip of the given distance (km) against
// the taxi. The five counter fields are recomputed from the loaded record and
// persisted in a single update:
//
//	NumTrips         += 1
//	FirstTripDate     = now (first trip only; immutable afterwards)
//	LastTripDate      = now
//	DistanceTraveled += distance
//	AvgDistPerTrip   += DistanceTraveled / NumTrips   (updated values)
//
// AvgDistPerTrip is a cumulative sum of per-trip averages, not a true running
// average — after the second trip it diverges from DistanceTraveled/NumTrips.
// Existing consumers depend on these values, so the recurrence is preserved
// exactly.
//
// The read and the update are two store round-trips with no version check, so
// two concurrent calls on the same id can both read the same snapshot and one
// increment is lost. Single-writer-per-record is assumed.
func (s *TaxiService) RegisterTrip(ctx context.Context, id uuid.UUID, distance float64) (domain.Taxi, error) {
	if distance <= 0 {
		return domain.Taxi{}, fmt.Errorf("%w: distance must be positive", domain.ErrValidation)
	}

	taxi, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("service.TaxiService.RegisterTrip: %w", err)
	}

	now := time.Now().UTC()
	trips := taxi.NumTrips + 1
	traveled := taxi.DistanceTraveled + distance
	avg := taxi.AvgDistPerTrip + traveled/float64(trips)

	patch := domain.TaxiPatch{
		NumTrips:         &trips,
		LastTripDate:     &now,
		DistanceTraveled: &traveled,
		AvgDistPerTrip:   &avg,
	}
	if taxi.FirstTripDate == nil {
		patch.FirstTripDate = &now
	}

	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("service.TaxiService.RegisterTrip: %w", err)
	}
	s.notifier.Changed(ctx, domain.EventUpdated, updated)
	return updated, nil
}

// UpdatePosition unconditionally overwrites the taxi's last known position
// and stamps LastPosUpdate. Coordinates are not range-checked; any numeric
// value is accepted.
func (s *TaxiService) UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64) (domain.Taxi, error) {
	now := time.Now().UTC()
	patch := domain.TaxiPatch{
		LastLat:       &lat,
		LastLon:       &lon,
		LastPosUpdate: &now,
	}

	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("service.TaxiService.UpdatePosition: %w", err)
	}
	s.notifier.Changed(ctx, domain.EventUpdated, updated)
	return updated, nil
}

// FindNearby returns every taxi whose last known position lies within
// distanceKm kilometers (inclusive) of the query point. Taxis that never
// reported a position are excluded. Results keep the store's insertion order;
// they are not sorted by distance. This is a read — no change event is emitted.
func (s *TaxiService) FindNearby(ctx context.Context, lat, lon float64, distanceKm int) ([]domain.Taxi, error) {
	if distanceKm <= 0 {
		return nil, fmt.Errorf("%w: distance must be positive", domain.ErrValidation)
	}

	positioned, err := s.repo.ListPositioned(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TaxiService.FindNearby: %w", err)
	}

	nearby := make([]domain.Taxi, 0)
	for _, taxi := range positioned {
		if !taxi.HasPosition() {
			continue
		}
		if geo.DistanceKm(*taxi.LastLat, *taxi.LastLon, lat, lon) <= float64(distanceKm) {
			nearby = append(nearby, taxi)
		}
	}
	return nearby, nil
}

// forceCreationZeros resets the fields a caller must not seed at creation:
// no driver, no trips, no position history.
func forceCreationZeros(taxi *domain.Taxi) {
	taxi.DriverID = domain.UnassignedDriver
	taxi.NumTrips = 0
	taxi.DistanceTraveled = 0
	taxi.AvgDistPerTrip = 0
	taxi.FirstTripDate = nil
	taxi.LastTripDate = nil
	taxi.LastPosUpdate = nil
	taxi.LastLat = nil
	taxi.LastLon = nil
	if taxi.RegisterDate.IsZero() {
		taxi.RegisterDate = time.Now().UTC()
	}
}

// validateDescriptive enforces the field rules shared by Create, InsertMany,
// and Update: maker/model/color length 2–30 and year within 1900–2999.
func validateDescriptive(taxi domain.Taxi) error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"maker", taxi.Maker},
		{"model", taxi.Model},
		{"color", taxi.Color},
	} {
		if n := utf8.RuneCountInString(f.value); n < 2 || n > 30 {
			return fmt.Errorf("%w: %s must be 2-30 characters", domain.ErrValidation, f.name)
		}
	}
	if taxi.Year < 1900 || taxi.Year > 2999 {
		return fmt.Errorf("%w: year must be between 1900 and 2999", domain.ErrValidation)
	}
	return nil
}
