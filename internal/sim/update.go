package sim

import (
	"fmt"
	"math"

	"healthease/internal/geo"
)

// StepResult reports what happened during one Step.
type StepResult struct {
	// Active is true while any session still needs frames.
	Active bool
	// Arrived lists ambulances whose dispatch finished this step.
	Arrived []string
	// DeliveredOrderID is set when the delivery reached its destination.
	DeliveredOrderID string
}

// Step advances every session by dt seconds of simulated time.
//
// A dispatch spends a budget of speed×dt meters. While the current waypoint
// is within the arrival threshold the index advances; at the final waypoint
// the ambulance snaps exactly onto the target and the session ends.
// Otherwise it moves min(budget, remaining) toward the waypoint. One trail
// point is recorded per step.
func (c *Context) Step(dt float64) StepResult {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	var res StepResult

	for _, id := range append([]string(nil), c.order...) {
		s := c.dispatches[id]
		if s.Cancelled {
			c.removeDispatch(id)
			continue
		}
		if c.stepDispatch(s, dt) {
			c.removeDispatch(id)
			res.Arrived = append(res.Arrived, id)
		}
	}

	if d := c.delivery; d != nil && d.Running {
		if c.stepDelivery(d, dt) {
			res.DeliveredOrderID = d.OrderID
		}
	}

	res.Active = c.Active()
	return res
}

// stepDispatch moves s and reports whether it arrived.
func (c *Context) stepDispatch(s *DispatchSession, dt float64) bool {
	obj, _ := c.registry.Get(AmbulanceObjectID(s.AmbulanceID))
	budget := s.SpeedMps * dt
	last := len(s.Waypoints) - 1

	for {
		next := s.Waypoints[s.WaypointIndex]
		remaining := geo.Haversine(s.Current, next)

		if remaining < ArrivalThresholdMeters {
			if s.WaypointIndex < last {
				s.WaypointIndex++
				continue
			}
			s.Current = s.Target
			if obj != nil {
				obj.Position = s.Target
				obj.appendTrail(s.Target, ambulanceTrailCap)
			}
			c.notify(fmt.Sprintf("%s arrived — %.2f km", s.Name, s.TotalKm), true)
			return true
		}

		if budget <= 0 {
			break
		}
		move := math.Min(budget, remaining)
		s.Current = geo.Lerp(s.Current, next, move/remaining)
		s.CoveredKm += move / 1000
		budget -= move
	}

	if obj != nil {
		obj.Position = s.Current
		obj.appendTrail(s.Current, ambulanceTrailCap)
	}
	return false
}

// stepDelivery moves the delivery straight toward its destination and
// reports whether it arrived.
func (c *Context) stepDelivery(d *DeliverySession, dt float64) bool {
	objID := deliveryObjectID(d.OrderID)
	obj, ok := c.registry.Get(objID)
	if !ok {
		obj = &MapObject{
			ID:       objID,
			Kind:     KindDelivery,
			Position: d.Current,
			Trail:    []geo.Point{d.Current},
			Icon:     IconDelivery,
			Label:    "Delivery",
		}
		c.registry.Put(obj)
		c.boundsDirty = true
	}

	remaining := geo.Haversine(d.Current, d.Destination)
	if remaining < ArrivalThresholdMeters {
		d.Current = d.Destination
		d.Running = false
		d.Arrived = true
		obj.Position = d.Destination
		obj.appendTrail(d.Destination, deliveryTrailCap)
		c.notify("Delivery arrived!", true)
		return true
	}

	move := math.Min(d.SpeedMps*dt, remaining)
	d.Current = geo.Lerp(d.Current, d.Destination, move/remaining)
	obj.Position = d.Current
	obj.appendTrail(d.Current, deliveryTrailCap)
	return false
}
