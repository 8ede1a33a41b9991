// Package geo implements the great-circle distance used by the nearby-taxi
// search. It is pure math with no dependencies, so the service layer can be
// unit-tested without a database.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees, using the spherical law of cosines:
//
//	d = R * acos(cos φ2 · cos φ1 · cos(λ1−λ2) + sin φ2 · sin φ1)
//
// The acos argument is clamped to [-1, 1]: for identical or near-identical
// points, floating-point rounding can push it slightly above 1, and an
// unclamped acos would then return NaN.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	lambda1 := radians(lon1)
	lambda2 := radians(lon2)

	arg := math.Cos(phi2)*math.Cos(phi1)*math.Cos(lambda1-lambda2) +
		math.Sin(phi2)*math.Sin(phi1)
	arg = clamp(arg, -1, 1)

	return EarthRadiusKm * math.Acos(arg)
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
