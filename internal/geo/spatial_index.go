package geo

import (
	"sort"
	"strings"
	"sync"
)

// Nearby pairs an indexed id with its distance from a query point.
type Nearby struct {
	ID         string  `json:"id"`
	Position   Point   `json:"position"`
	DistanceKm float64 `json:"distanceKm"`
}

// SpatialIndex buckets positions by geohash cell so a proximity query only
// has to measure the ids in the cells around the query point.
//
// Go Learning Note — Secondary index:
// cellOf maps id → geohash, so moving or removing an id is O(1) instead of
// scanning every cell to find where it was.
type SpatialIndex struct {
	mu        sync.RWMutex
	precision int
	cells     map[string]map[string]Point // geohash -> id -> position
	cellOf    map[string]string           // id -> geohash
}

// NewSpatialIndex creates an empty index at the given geohash precision.
func NewSpatialIndex(precision int) *SpatialIndex {
	if precision <= 0 || precision > maxPrecision {
		precision = 6
	}
	return &SpatialIndex{
		precision: precision,
		cells:     make(map[string]map[string]Point),
		cellOf:    make(map[string]string),
	}
}

// Update inserts id at p, moving it out of its previous cell if needed.
func (s *SpatialIndex) Update(id string, p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := Encode(p.Lat, p.Lng, s.precision)
	if old, ok := s.cellOf[id]; ok && old != hash {
		s.removeLocked(id)
	}
	if _, ok := s.cells[hash]; !ok {
		s.cells[hash] = make(map[string]Point)
	}
	s.cells[hash][id] = p
	s.cellOf[id] = hash
}

// Remove drops id from the index. Unknown ids are ignored.
func (s *SpatialIndex) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *SpatialIndex) removeLocked(id string) {
	hash, ok := s.cellOf[id]
	if !ok {
		return
	}
	delete(s.cellOf, id)
	if ids := s.cells[hash]; ids != nil {
		delete(ids, id)
		if len(ids) == 0 {
			delete(s.cells, hash)
		}
	}
}

// Get returns the indexed position of id.
func (s *SpatialIndex) Get(id string) (Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.cellOf[id]
	if !ok {
		return Point{}, false
	}
	p, ok := s.cells[hash][id]
	return p, ok
}

// Reset empties the index.
func (s *SpatialIndex) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = make(map[string]map[string]Point)
	s.cellOf = make(map[string]string)
}

// Count returns the number of indexed ids.
func (s *SpatialIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cellOf)
}

// FindNearby returns every id within radiusKm of center, nearest first.
//
// The coarse phase picks the longest geohash prefix whose cells are at least
// radiusKm across, then collects the indexed cells that start with any of the
// 9 prefixes around the center. The fine phase measures each candidate with
// Haversine and keeps those inside the radius.
func (s *SpatialIndex) FindNearby(center Point, radiusKm float64) []Nearby {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefixes := Neighborhood(s.searchHash(center, radiusKm))

	var out []Nearby
	for hash, ids := range s.cells {
		if !hasAnyPrefix(hash, prefixes) {
			continue
		}
		for id, p := range ids {
			d := HaversineKm(center, p)
			if d <= radiusKm {
				out = append(out, Nearby{ID: id, Position: p, DistanceKm: d})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm == out[j].DistanceKm {
			return out[i].ID < out[j].ID
		}
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}

func (s *SpatialIndex) searchHash(center Point, radiusKm float64) string {
	for p := s.precision; p > 1; p-- {
		hash := Encode(center.Lat, center.Lng, p)
		cell, _ := DecodeCell(hash)
		h, w := cellSizeKm(cell)
		if h >= radiusKm && w >= radiusKm {
			return hash
		}
	}
	return Encode(center.Lat, center.Lng, 1)
}

func hasAnyPrefix(hash string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(hash, p) {
			return true
		}
	}
	return false
}
