// Package geo holds the small amount of geodesy the map simulation needs:
// great-circle distances, interpolation, random sampling around a point,
// coordinate parsing, projection onto a drawing surface, and a geohash
// index for "what is near me" queries.
//
// Distances are computed on a sphere of radius 6371 km. Interpolation is done
// linearly in latitude/longitude, which is accurate enough at city scale.
package geo

import (
	"math"
	"math/rand"

	"github.com/golang/geo/s2"
)

const (
	// EarthRadiusMeters is the mean Earth radius used for every distance.
	EarthRadiusMeters = 6371000.0

	// MetersPerDegree is the approximate length of one degree of latitude.
	MetersPerDegree = 111300.0
)

// Point is a WGS84 position in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance between a and b in meters.
//
// Go Learning Note — Leaning on a library:
// s2.LatLng.Distance implements the haversine formula with the numerically
// stable atan2 form. It returns an s1.Angle (radians on the unit sphere), so
// multiplying by the Earth radius yields meters.
func Haversine(a, b Point) float64 {
	pa := s2.LatLngFromDegrees(a.Lat, a.Lng)
	pb := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return pa.Distance(pb).Radians() * EarthRadiusMeters
}

// HaversineKm is Haversine in kilometers.
func HaversineKm(a, b Point) float64 {
	return Haversine(a, b) / 1000
}

// Lerp interpolates linearly between a and b; t=0 yields a, t=1 yields b.
func Lerp(a, b Point, t float64) Point {
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}

// RandomNearby returns a uniformly distributed random point within
// radiusMeters of center.
func RandomNearby(rng *rand.Rand, center Point, radiusMeters float64) Point {
	r := radiusMeters / MetersPerDegree
	w := r * math.Sqrt(rng.Float64())
	t := 2 * math.Pi * rng.Float64()
	return Point{
		Lat: center.Lat + w*math.Sin(t),
		Lng: center.Lng + w*math.Cos(t)/math.Cos(ToRadians(center.Lat)),
	}
}
