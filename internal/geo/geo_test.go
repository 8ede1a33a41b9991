package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cabfleet/taxi-api/internal/geo"
)

func TestDistanceKm_IdenticalPoints(t *testing.T) {
	d := geo.DistanceKm(48.8566, 2.3522, 48.8566, 2.3522)

	assert.InDelta(t, 0, d, 1e-9)
}

// Near-identical points can push the acos argument slightly above 1 through
// rounding. Without clamping this produces NaN.
func TestDistanceKm_NearIdenticalPoints_NoNaN(t *testing.T) {
	d := geo.DistanceKm(51.5074, -0.1278, 51.5074+1e-13, -0.1278-1e-13)

	assert.False(t, math.IsNaN(d), "expected a real distance, got NaN")
	assert.InDelta(t, 0, d, 0.001)
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := geo.DistanceKm(40.7128, -74.0060, 34.0522, -118.2437)
	b := geo.DistanceKm(34.0522, -118.2437, 40.7128, -74.0060)

	assert.InDelta(t, a, b, 1e-9)
}

// One degree of longitude along the equator subtends exactly R·π/180 km on
// a sphere, which anchors the formula to a hand-checkable value.
func TestDistanceKm_OneDegreeOnEquator(t *testing.T) {
	d := geo.DistanceKm(0, 0, 0, 1)

	want := geo.EarthRadiusKm * math.Pi / 180
	assert.InDelta(t, want, d, 1e-6)
}

func TestDistanceKm_AntipodalPoints(t *testing.T) {
	// Poles are half the circumference apart.
	d := geo.DistanceKm(90, 0, -90, 0)

	want := geo.EarthRadiusKm * math.Pi
	assert.InDelta(t, want, d, 1e-6)
}

func TestDistanceKm_KnownCityPair(t *testing.T) {
	// Paris ↔ London is roughly 344 km by great circle.
	d := geo.DistanceKm(48.8566, 2.3522, 51.5074, -0.1278)

	assert.InDelta(t, 344, d, 2)
}
