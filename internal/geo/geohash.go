package geo

import (
	"fmt"
	"math"
	"strings"
)

// Geohash cells at a few precisions, for orientation:
//
//	4 → ~39 km    5 → ~5 km    6 → ~1.2 km    7 → ~153 m
//
// Ambulances are indexed at precision 6 by default. Queries with a radius
// larger than one cell widen the search to a shorter prefix.

// base32 is the geohash alphabet; 'a', 'i', 'l' and 'o' are not used.
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

const maxPrecision = 12

// Encode converts a position to a geohash of the given precision (1..12,
// default 6). Longitude and latitude bits alternate, longitude first, and
// every 5 bits become one base32 character.
func Encode(lat, lng float64, precision int) string {
	if precision <= 0 {
		precision = 6
	}
	if precision > maxPrecision {
		precision = maxPrecision
	}

	cell := BoundingBox{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}
	var hash strings.Builder
	lngBit := true
	bits, ch := 0, 0

	for hash.Len() < precision {
		ch <<= 1
		if lngBit {
			mid := (cell.MinLng + cell.MaxLng) / 2
			if lng >= mid {
				ch |= 1
				cell.MinLng = mid
			} else {
				cell.MaxLng = mid
			}
		} else {
			mid := (cell.MinLat + cell.MaxLat) / 2
			if lat >= mid {
				ch |= 1
				cell.MinLat = mid
			} else {
				cell.MaxLat = mid
			}
		}
		lngBit = !lngBit

		if bits++; bits == 5 {
			hash.WriteByte(base32[ch])
			bits, ch = 0, 0
		}
	}
	return hash.String()
}

// DecodeCell returns the lat/lng rectangle covered by hash.
func DecodeCell(hash string) (BoundingBox, error) {
	cell := BoundingBox{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}
	lngBit := true

	for i := 0; i < len(hash); i++ {
		idx := strings.IndexByte(base32, hash[i])
		if idx < 0 {
			return BoundingBox{}, fmt.Errorf("geohash %q: invalid character %q", hash, hash[i])
		}
		for mask := 16; mask > 0; mask >>= 1 {
			on := idx&mask != 0
			if lngBit {
				mid := (cell.MinLng + cell.MaxLng) / 2
				if on {
					cell.MinLng = mid
				} else {
					cell.MaxLng = mid
				}
			} else {
				mid := (cell.MinLat + cell.MaxLat) / 2
				if on {
					cell.MinLat = mid
				} else {
					cell.MaxLat = mid
				}
			}
			lngBit = !lngBit
		}
	}
	return cell, nil
}

// Decode returns the center of the cell named by hash.
func Decode(hash string) (Point, error) {
	cell, err := DecodeCell(hash)
	if err != nil {
		return Point{}, err
	}
	return cell.Center(), nil
}

// Neighborhood returns hash together with the cells surrounding it (up to 9
// distinct hashes of the same precision). Neighbors are found by stepping one
// cell height/width from the center and re-encoding, which handles the
// antimeridian by wrapping longitude; rows beyond a pole are skipped.
func Neighborhood(hash string) []string {
	cell, err := DecodeCell(hash)
	if err != nil || hash == "" {
		return nil
	}
	c := cell.Center()
	dLat := cell.MaxLat - cell.MinLat
	dLng := cell.MaxLng - cell.MinLng

	seen := make(map[string]bool, 9)
	out := make([]string, 0, 9)
	out = append(out, hash)
	seen[hash] = true

	for dy := -1; dy <= 1; dy++ {
		lat := c.Lat + float64(dy)*dLat
		if lat > 90 || lat < -90 {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			lng := wrapLng(c.Lng + float64(dx)*dLng)
			h := Encode(lat, lng, len(hash))
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	return out
}

// cellSizeKm approximates the height and width of a cell in kilometers.
func cellSizeKm(cell BoundingBox) (heightKm, widthKm float64) {
	kmPerDeg := MetersPerDegree / 1000
	heightKm = (cell.MaxLat - cell.MinLat) * kmPerDeg
	widthKm = (cell.MaxLng - cell.MinLng) * kmPerDeg * math.Cos(ToRadians(cell.Center().Lat))
	return heightKm, widthKm
}

func wrapLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}
