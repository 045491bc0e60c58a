package sim

import (
	"errors"
	"fmt"
	"strings"

	"healthease/internal/domain/entities"
	"healthease/internal/geo"
)

var (
	// ErrAmbulanceBusy matches any BusyError.
	ErrAmbulanceBusy = errors.New("ambulance is busy")

	// ErrNoTarget is returned when neither coordinates nor a user location
	// are available.
	ErrNoTarget = errors.New("Provide address or use my location")
)

// BusyError rejects a dispatch of an ambulance whose status reads as busy.
type BusyError struct {
	Name   string
	Status string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("%s is marked %s and cannot be dispatched.", e.Name, e.Status)
}

func (e *BusyError) Is(target error) bool {
	return target == ErrAmbulanceBusy
}

// DispatchResult describes the session after a Dispatch call.
type DispatchResult struct {
	Session       DispatchSession `json:"session"`
	AlreadyActive bool            `json:"alreadyActive"`
}

// ResolveTarget parses input as "lat,lon". Blank input falls back to the
// user location.
func (c *Context) ResolveTarget(input string) (geo.Point, error) {
	if strings.TrimSpace(input) != "" {
		return geo.ParseCoords(input)
	}
	if c.user != nil {
		return *c.user, nil
	}
	return geo.Point{}, ErrNoTarget
}

// Dispatch starts moving ambulance a toward target.
//
// An ambulance that is already moving is left alone and its session is
// returned with AlreadyActive set. A busy ambulance is rejected unless it is
// a demo ambulance. The starting point is where the ambulance is drawn, else
// its record location, else a random point 0.01–0.03° from the target.
func (c *Context) Dispatch(a entities.Ambulance, target geo.Point) (DispatchResult, error) {
	name := a.DisplayName()
	objID := AmbulanceObjectID(a.ID)

	obj, exists := c.registry.Get(objID)
	if !exists && a.Location != nil {
		obj = c.newAmbulanceObject(a)
		c.registry.Put(obj)
		c.boundsDirty = true
		exists = true
	}

	if s, active := c.dispatches[a.ID]; active {
		c.notify(name+" already dispatched — tracking", true)
		return DispatchResult{Session: *s, AlreadyActive: true}, nil
	}

	if !a.CanDispatch() {
		return DispatchResult{}, &BusyError{Name: name, Status: a.Status}
	}

	var start geo.Point
	switch {
	case exists:
		start = obj.Position
	case a.Location != nil:
		start = a.Location.Point()
	default:
		start = geo.Point{
			Lat: target.Lat + c.rng.Float64()*0.02 + 0.01,
			Lng: target.Lng + c.rng.Float64()*0.02 + 0.01,
		}
	}

	speed := a.SpeedKmph
	if speed <= 0 {
		speed = FallbackSpeedKmph
	}
	totalM := geo.Haversine(start, target)
	count := WaypointCount(totalM)

	s := &DispatchSession{
		AmbulanceID:   a.ID,
		Name:          name,
		Origin:        start,
		Target:        target,
		Current:       start,
		Waypoints:     BuildWaypoints(start, target, count),
		WaypointCount: count,
		SpeedMps:      kmphToMps(speed),
		TotalKm:       totalM / 1000,
		StartedAt:     c.now(),
	}
	c.dispatches[a.ID] = s
	c.order = append(c.order, a.ID)

	if !exists {
		snapshot := a
		obj = &MapObject{
			ID:    objID,
			Kind:  KindAmbulance,
			Icon:  IconAmbulance,
			Label: name,
			Meta:  &snapshot,
		}
		c.registry.Put(obj)
	}
	obj.Position = start
	obj.Trail = []geo.Point{start}
	c.boundsDirty = true

	c.notify(fmt.Sprintf("%s dispatched — %.2f km", name, s.TotalKm), false)
	return DispatchResult{Session: *s}, nil
}

// Cancel stops the dispatch of ambulanceID, leaving the ambulance where it
// is. It reports false, and changes nothing, when no dispatch is active.
func (c *Context) Cancel(ambulanceID string) bool {
	s, ok := c.dispatches[ambulanceID]
	if !ok {
		c.notify("No active dispatch for this ambulance", true)
		return false
	}
	s.Cancelled = true
	c.removeDispatch(ambulanceID)
	c.notify("Ambulance dispatch cancelled", false)
	return true
}

func (c *Context) newAmbulanceObject(a entities.Ambulance) *MapObject {
	p := a.Location.Point()
	snapshot := a
	return &MapObject{
		ID:       AmbulanceObjectID(a.ID),
		Kind:     KindAmbulance,
		Position: p,
		Trail:    []geo.Point{p},
		Icon:     IconAmbulance,
		Label:    a.DisplayName(),
		Meta:     &snapshot,
	}
}
