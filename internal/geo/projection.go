package geo

import "math"

const (
	boundsPadFraction = 0.12
	boundsPadDegrees  = 0.01
)

// BoundingBox is the lat/lng window the map surface shows.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
}

// DefaultBounds covers India and is used when there is nothing to show.
var DefaultBounds = BoundingBox{MinLat: 8, MaxLat: 38, MinLng: 68, MaxLng: 98}

// BoundsOf returns the box enclosing points, padded on every side by 12% of
// the span plus 0.01 degrees. An empty input yields DefaultBounds.
func BoundsOf(points []Point) BoundingBox {
	if len(points) == 0 {
		return DefaultBounds
	}

	b := BoundingBox{
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
		MinLng: math.Inf(1), MaxLng: math.Inf(-1),
	}
	for _, p := range points {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}

	padLat := (b.MaxLat-b.MinLat)*boundsPadFraction + boundsPadDegrees
	padLng := (b.MaxLng-b.MinLng)*boundsPadFraction + boundsPadDegrees
	return BoundingBox{
		MinLat: b.MinLat - padLat,
		MaxLat: b.MaxLat + padLat,
		MinLng: b.MinLng - padLng,
		MaxLng: b.MaxLng + padLng,
	}
}

// Project maps p to pixel coordinates on a w×h surface. North is up, so the
// top edge is MaxLat. A zero span is treated as 1 degree.
func (b BoundingBox) Project(p Point, w, h float64) (x, y float64) {
	lngSpan := b.MaxLng - b.MinLng
	if lngSpan == 0 {
		lngSpan = 1
	}
	latSpan := b.MaxLat - b.MinLat
	if latSpan == 0 {
		latSpan = 1
	}
	x = (p.Lng - b.MinLng) / lngSpan * w
	y = (b.MaxLat - p.Lat) / latSpan * h
	return x, y
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Point {
	return Point{Lat: (b.MinLat + b.MaxLat) / 2, Lng: (b.MinLng + b.MaxLng) / 2}
}
