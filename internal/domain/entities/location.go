package entities

import "healthease/internal/geo"

// Location is the lat/lng pair stored on backend records.
//
// Go Learning Note — Value Types vs Reference Types:
// Location is a 16-byte value and is passed by value. Records that may lack
// a position hold a *Location instead, so "no location" is nil rather than
// the (0, 0) point in the Gulf of Guinea.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewLocation creates a Location value from latitude and longitude.
func NewLocation(lat, lng float64) Location {
	return Location{Lat: lat, Lng: lng}
}

// LocationFromPoint converts a geo.Point to a Location.
func LocationFromPoint(p geo.Point) Location {
	return Location{Lat: p.Lat, Lng: p.Lng}
}

// Point converts the location to a geo.Point.
func (l Location) Point() geo.Point {
	return geo.Point{Lat: l.Lat, Lng: l.Lng}
}
