// Package repo contains all database access logic for the taxi fleet service.
// It exposes the store operations the service depends on: insert, get,
// update-by-id with partial fields, query-by-filter, and bulk insert.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cabfleet/taxi-api/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// taxiColumns is the column list shared by every SELECT and RETURNING clause,
// in the order scanTaxi expects.
const taxiColumns = `id, driver_id, maker, model, color, year, register_date,
	first_trip_date, last_trip_date, last_pos_update, last_lat, last_lon,
	num_trips, distance_traveled, avg_dist_per_trip, created_at, updated_at`

// TaxiRepo defines the persistence operations for taxis.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TaxiRepo interface {
	// Create inserts a new taxi and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, taxi domain.Taxi) (domain.Taxi, error)

	// InsertMany inserts all given taxis in a single batch and returns the
	// persisted records in input order. The batch fails as a unit.
	InsertMany(ctx context.Context, taxis []domain.Taxi) ([]domain.Taxi, error)

	// Get retrieves a single taxi by its UUID primary key.
	// Returns domain.ErrNotFound if no taxi with that ID exists.
	Get(ctx context.Context, id uuid.UUID) (domain.Taxi, error)

	// List returns taxis matching the filter in insertion order, paginated.
	List(ctx context.Context, filter domain.TaxiFilter, page domain.PaginationParams) ([]domain.Taxi, error)

	// Count returns the number of taxis matching the filter.
	Count(ctx context.Context, filter domain.TaxiFilter) (int64, error)

	// UpdateByID applies the non-nil fields of patch to the taxi with the
	// given ID in a single UPDATE and returns the updated record.
	// Returns domain.ErrNotFound if no taxi with that ID exists.
	UpdateByID(ctx context.Context, id uuid.UUID, patch domain.TaxiPatch) (domain.Taxi, error)

	// Delete removes a taxi by ID and returns the removed record, so callers
	// can emit a change notification carrying it.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) (domain.Taxi, error)

	// ListPositioned returns every taxi that has reported at least one
	// position, in insertion order. Input to the nearby linear scan.
	ListPositioned(ctx context.Context) ([]domain.Taxi, error)
}

// pgTaxiRepo is the Postgres implementation of TaxiRepo.
type pgTaxiRepo struct {
	db db
}

// NewTaxiRepo constructs a TaxiRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTaxiRepo(db db) TaxiRepo {
	return &pgTaxiRepo{db: db}
}

const insertTaxiSQL = `
	INSERT INTO taxis (driver_id, maker, model, color, year, register_date)
	VALUES (@driver_id, @maker, @model, @color, @year, @register_date)
	RETURNING ` + taxiColumns

// insertArgs builds the NamedArgs for insertTaxiSQL. Counters are not part of
// the insert — the schema defaults them to zero, matching the forced-zero
// creation rule.
func insertArgs(taxi domain.Taxi) pgx.NamedArgs {
	return pgx.NamedArgs{
		"driver_id":     taxi.DriverID,
		"maker":         taxi.Maker,
		"model":         taxi.Model,
		"color":         taxi.Color,
		"year":          taxi.Year,
		"register_date": taxi.RegisterDate,
	}
}

// Create inserts a new taxi row and returns the full persisted record.
func (r *pgTaxiRepo) Create(ctx context.Context, taxi domain.Taxi) (domain.Taxi, error) {
	row := r.db.QueryRow(ctx, insertTaxiSQL, insertArgs(taxi))
	result, err := scanTaxi(row)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("repo.TaxiRepo.Create: %w", err)
	}
	return result, nil
}

// InsertMany queues one insert per taxi into a pgx batch, which pgx sends in
// a single implicit transaction. Either all rows are inserted or none are.
func (r *pgTaxiRepo) InsertMany(ctx context.Context, taxis []domain.Taxi) ([]domain.Taxi, error) {
	if len(taxis) == 0 {
		return []domain.Taxi{}, nil
	}

	batch := &pgx.Batch{}
	for _, taxi := range taxis {
		batch.Queue(insertTaxiSQL, insertArgs(taxi))
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := make([]domain.Taxi, 0, len(taxis))
	for range taxis {
		taxi, err := scanTaxi(results.QueryRow())
		if err != nil {
			return nil, fmt.Errorf("repo.TaxiRepo.InsertMany: %w", err)
		}
		inserted = append(inserted, taxi)
	}
	return inserted, nil
}

// Get retrieves a taxi by primary key.
func (r *pgTaxiRepo) Get(ctx context.Context, id uuid.UUID) (domain.Taxi, error) {
	q := `SELECT ` + taxiColumns + ` FROM taxis WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTaxi(row)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("repo.TaxiRepo.Get: %w", err)
	}
	return result, nil
}

// filterClause is the WHERE body shared by List and Count. Each condition
// collapses to true when its argument is NULL, so one static statement covers
// every filter combination.
const filterClause = `
	(@maker::text     IS NULL OR maker     = @maker::text)     AND
	(@model::text     IS NULL OR model     = @model::text)     AND
	(@color::text     IS NULL OR color     = @color::text)     AND
	(@year::int       IS NULL OR year      = @year::int)       AND
	(@driver_id::text IS NULL OR driver_id = @driver_id::text)`

func filterArgs(filter domain.TaxiFilter) pgx.NamedArgs {
	return pgx.NamedArgs{
		"maker":     filter.Maker,
		"model":     filter.Model,
		"color":     filter.Color,
		"year":      filter.Year,
		"driver_id": filter.DriverID,
	}
}

// List returns matching taxis in insertion order (created_at, then id as a
// tiebreaker for rows created in the same clock tick).
func (r *pgTaxiRepo) List(ctx context.Context, filter domain.TaxiFilter, page domain.PaginationParams) ([]domain.Taxi, error) {
	q := `SELECT ` + taxiColumns + `
		FROM taxis
		WHERE ` + filterClause + `
		ORDER BY created_at, id
		LIMIT @limit OFFSET @offset`

	args := filterArgs(filter)
	args["limit"] = page.Limit
	args["offset"] = page.Offset()

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TaxiRepo.List: %w", err)
	}
	defer rows.Close()

	taxis, err := scanTaxis(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TaxiRepo.List: %w", err)
	}
	return taxis, nil
}

// Count returns the number of taxis matching the filter.
func (r *pgTaxiRepo) Count(ctx context.Context, filter domain.TaxiFilter) (int64, error) {
	q := `SELECT count(*) FROM taxis WHERE ` + filterClause

	var n int64
	if err := r.db.QueryRow(ctx, q, filterArgs(filter)).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.TaxiRepo.Count: %w", err)
	}
	return n, nil
}

// UpdateByID applies the non-nil patch fields in one statement. COALESCE keeps
// the stored value wherever the corresponding argument is NULL, so a single
// static UPDATE serves every partial-update shape the service produces.
func (r *pgTaxiRepo) UpdateByID(ctx context.Context, id uuid.UUID, patch domain.TaxiPatch) (domain.Taxi, error) {
	q := `
		UPDATE taxis
		SET driver_id         = COALESCE(@driver_id, driver_id),
		    maker             = COALESCE(@maker, maker),
		    model             = COALESCE(@model, model),
		    color             = COALESCE(@color, color),
		    year              = COALESCE(@year, year),
		    first_trip_date   = COALESCE(@first_trip_date, first_trip_date),
		    last_trip_date    = COALESCE(@last_trip_date, last_trip_date),
		    last_pos_update   = COALESCE(@last_pos_update, last_pos_update),
		    last_lat          = COALESCE(@last_lat, last_lat),
		    last_lon          = COALESCE(@last_lon, last_lon),
		    num_trips         = COALESCE(@num_trips, num_trips),
		    distance_traveled = COALESCE(@distance_traveled, distance_traveled),
		    avg_dist_per_trip = COALESCE(@avg_dist_per_trip, avg_dist_per_trip),
		    updated_at        = now()
		WHERE id = @id
		RETURNING ` + taxiColumns

	args := pgx.NamedArgs{
		"id":                id,
		"driver_id":         patch.DriverID,
		"maker":             patch.Maker,
		"model":             patch.Model,
		"color":             patch.Color,
		"year":              patch.Year,
		"first_trip_date":   patch.FirstTripDate,
		"last_trip_date":    patch.LastTripDate,
		"last_pos_update":   patch.LastPosUpdate,
		"last_lat":          patch.LastLat,
		"last_lon":          patch.LastLon,
		"num_trips":         patch.NumTrips,
		"distance_traveled": patch.DistanceTraveled,
		"avg_dist_per_trip": patch.AvgDistPerTrip,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTaxi(row)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("repo.TaxiRepo.UpdateByID: %w", err)
	}
	return result, nil
}

// Delete removes a taxi by primary key and returns the removed row.
func (r *pgTaxiRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Taxi, error) {
	q := `DELETE FROM taxis WHERE id = @id RETURNING ` + taxiColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTaxi(row)
	if err != nil {
		return domain.Taxi{}, fmt.Errorf("repo.TaxiRepo.Delete: %w", err)
	}
	return result, nil
}

// ListPositioned returns all taxis with a recorded position, in insertion
// order. The nearby search is a full linear scan over this result — there is
// no spatial index, which is acceptable at small fleet sizes.
func (r *pgTaxiRepo) ListPositioned(ctx context.Context) ([]domain.Taxi, error) {
	q := `SELECT ` + taxiColumns + `
		FROM taxis
		WHERE last_pos_update IS NOT NULL
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TaxiRepo.ListPositioned: %w", err)
	}
	defer rows.Close()

	taxis, err := scanTaxis(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TaxiRepo.ListPositioned: %w", err)
	}
	return taxis, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTaxi to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTaxi maps a single database row into a domain.Taxi.
// It handles the UUID and the five nullable column conversions.
func scanTaxi(s scanner) (domain.Taxi, error) {
	var (
		t         domain.Taxi
		id        pgtype.UUID
		firstTrip pgtype.Timestamptz
		lastTrip  pgtype.Timestamptz
		lastPos   pgtype.Timestamptz
		lastLat   pgtype.Float8
		lastLon   pgtype.Float8
	)

	err := s.Scan(&id, &t.DriverID, &t.Maker, &t.Model, &t.Color, &t.Year,
		&t.RegisterDate, &firstTrip, &lastTrip, &lastPos, &lastLat, &lastLon,
		&t.NumTrips, &t.DistanceTraveled, &t.AvgDistPerTrip,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Taxi{}, domain.ErrNotFound
		}
		return domain.Taxi{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	if firstTrip.Valid {
		v := firstTrip.Time
		t.FirstTripDate = &v
	}
	if lastTrip.Valid {
		v := lastTrip.Time
		t.LastTripDate = &v
	}
	if lastPos.Valid {
		v := lastPos.Time
		t.LastPosUpdate = &v
	}
	if lastLat.Valid {
		v := lastLat.Float64
		t.LastLat = &v
	}
	if lastLon.Valid {
		v := lastLon.Float64
		t.LastLon = &v
	}

	return t, nil
}

// scanTaxis drains rows into a slice, surfacing the first scan or rows error.
func scanTaxis(rows pgx.Rows) ([]domain.Taxi, error) {
	var taxis []domain.Taxi
	for rows.Next() {
		t, err := scanTaxi(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		taxis = append(taxis, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return taxis, nil
}
