package sim

import (
	"fmt"
	"math/rand"
	"strings"

	"healthease/internal/domain/entities"
	"healthease/internal/geo"
)

// DemoCenter is where synthetic ambulances are scattered.
var DemoCenter = geo.Point{Lat: 12.9716, Lng: 77.5946}

// Reconcile merges a fresh ambulance snapshot into the registry.
//
// Ambulances without a map object get one at their reported location.
// Existing objects take the snapshot's position, label and record, except
// while a dispatch is animating them. Ambulance objects missing from the
// snapshot are removed unless they are being animated.
func (c *Context) Reconcile(ambulances []entities.Ambulance) {
	listed := make(map[string]bool, len(ambulances))

	for _, a := range ambulances {
		if a.ID == "" {
			continue
		}
		objID := AmbulanceObjectID(a.ID)
		listed[objID] = true

		obj, exists := c.registry.Get(objID)
		if !exists {
			if a.Location != nil {
				c.registry.Put(c.newAmbulanceObject(a))
			}
			continue
		}
		if c.IsActive(a.ID) {
			continue
		}
		if a.Location != nil {
			obj.Position = a.Location.Point()
		}
		if a.Name != "" {
			obj.Label = a.Name
		}
		snapshot := a
		obj.Meta = &snapshot
	}

	c.registry.RemoveIf(func(o *MapObject) bool {
		if o.Kind != KindAmbulance || listed[o.ID] {
			return false
		}
		return !c.IsActive(strings.TrimPrefix(o.ID, ambulancePrefix))
	})
	c.boundsDirty = true
}

// SyntheticAmbulances returns the demo ambulances needed to bring the
// fleet up to minVisible, or nil if there are enough. Ambulance k (0-based) is
// "Ambulance <A+k>", Busy when k%3 == 0, drives at 40+2k km/h and sits
// within 1500+300k meters of center. Ids are "demo-<k>", skipping any id
// already taken by a real ambulance.
func SyntheticAmbulances(fleet []entities.Ambulance, minVisible int, center geo.Point, rng *rand.Rand) []entities.Ambulance {
	needed := minVisible - len(fleet)
	if needed <= 0 {
		return nil
	}

	taken := make(map[string]bool, len(fleet))
	for _, a := range fleet {
		taken[a.ID] = true
	}

	out := make([]entities.Ambulance, 0, needed)
	suffix := 0
	for k := 0; k < needed; k++ {
		id := fmt.Sprintf("demo-%d", k)
		for taken[id] {
			suffix++
			id = fmt.Sprintf("demo-%d-%d", k, suffix)
		}
		taken[id] = true
		out = append(out, SyntheticAmbulance(k, id, center, rng))
	}
	return out
}

// SyntheticAmbulance builds demo ambulance k with the given id.
func SyntheticAmbulance(k int, id string, center geo.Point, rng *rand.Rand) entities.Ambulance {
	status := entities.AmbulanceStatusAvailable
	if k%3 == 0 {
		status = entities.AmbulanceStatusBusy
	}
	loc := entities.LocationFromPoint(geo.RandomNearby(rng, center, 1500+300*float64(k)))
	return entities.Ambulance{
		ID:        id,
		Name:      fmt.Sprintf("Ambulance %c", rune('A'+k%26)),
		Status:    status,
		SpeedKmph: 40 + 2*float64(k),
		Location:  &loc,
		Demo:      true,
	}
}
