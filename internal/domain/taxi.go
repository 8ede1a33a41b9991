// Package domain contains the core data types for the taxi fleet service.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler, notify).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnassignedDriver is the sentinel DriverID value for a taxi with no driver.
// It mirrors the wire representation ("0") rather than an empty string, so
// records created through the bulk/import path and the API look identical.
const UnassignedDriver = "0"

// Taxi is the single aggregate owned by this service.
//
// FirstTripDate, LastTripDate, LastPosUpdate, LastLat, and LastLon are
// pointers: nil means the event in question has never happened. LastLat and
// LastLon carry meaning only while LastPosUpdate is non-nil — the repo writes
// all three together and never one without the others.
//
// NumTrips, DistanceTraveled, and AvgDistPerTrip are present-but-zero at
// creation; Create forces them to zero regardless of caller input, so no layer
// ever needs to distinguish "unset" from 0.
type Taxi struct {
	ID       uuid.UUID `json:"id"`
	DriverID string    `json:"idDriver"`
	Maker    string    `json:"maker"`
	Model    string    `json:"model"`
	Color    string    `json:"color"`
	Year     int       `json:"year"`

	RegisterDate  time.Time  `json:"registerDate"`
	FirstTripDate *time.Time `json:"firstTripDate,omitempty"`
	LastTripDate  *time.Time `json:"lastTripDate,omitempty"`
	LastPosUpdate *time.Time `json:"lastPosUpdateDate,omitempty"`

	LastLat *float64 `json:"lastLat,omitempty"`
	LastLon *float64 `json:"lastLon,omitempty"`

	NumTrips         int     `json:"numOfTrips"`
	DistanceTraveled float64 `json:"distanceTraveled"`
	AvgDistPerTrip   float64 `json:"avgDistPerTrip"`

	// Bookkeeping columns; never serialized to clients.
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// HasPosition reports whether the taxi has ever reported a position.
// Only taxis with a position participate in nearby searches.
func (t Taxi) HasPosition() bool {
	return t.LastPosUpdate != nil && t.LastLat != nil && t.LastLon != nil
}

// TaxiPatch is a partial update: nil fields are left untouched by the store.
// The domain actions each populate only the fields they own — AssignDriver
// sets DriverID, UpdatePosition sets the position triple, RegisterTrip sets
// the five trip counters — so a single UpdateByID covers all of them.
type TaxiPatch struct {
	DriverID *string
	Maker    *string
	Model    *string
	Color    *string
	Year     *int

	FirstTripDate *time.Time
	LastTripDate  *time.Time
	LastPosUpdate *time.Time
	LastLat       *float64
	LastLon       *float64

	NumTrips         *int
	DistanceTraveled *float64
	AvgDistPerTrip   *float64
}

// TaxiFilter carries optional equality filters for List/Count.
// Nil fields match everything.
type TaxiFilter struct {
	Maker    *string
	Model    *string
	Color    *string
	Year     *int
	DriverID *string
}
