package geo

import (
	"errors"
	"regexp"
	"strconv"
)

// ErrInvalidCoordinates is returned for any string that is not "lat,lon".
var ErrInvalidCoordinates = errors.New("Enter lat,lon (e.g. 12.9716,77.5946) or use my location.")

var coordPattern = regexp.MustCompile(`^\s*([+-]?\d+(\.\d+)?)\s*[, ]\s*([+-]?\d+(\.\d+)?)\s*$`)

// ParseCoords parses "lat,lon" (comma or space separated) into a Point.
func ParseCoords(s string) (Point, error) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return Point{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Point{}, ErrInvalidCoordinates
	}
	lng, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Point{}, ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Point{}, ErrInvalidCoordinates
	}
	return Point{Lat: lat, Lng: lng}, nil
}
