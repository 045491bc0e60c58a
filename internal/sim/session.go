package sim

import (
	"math"
	"time"

	"healthease/internal/geo"
)

const (
	// ArrivalThresholdMeters is how close counts as "at" a waypoint.
	ArrivalThresholdMeters = 6.0

	// MinWaypoints is the floor on waypoints per dispatch.
	MinWaypoints = 20

	// WaypointSpacingMeters is the target spacing between waypoints on long
	// routes.
	WaypointSpacingMeters = 150.0

	// FallbackSpeedKmph is used when an ambulance record carries no speed.
	FallbackSpeedKmph = 35.0
)

// DispatchSession is one ambulance moving from Origin to Target through
// Waypoints. WaypointIndex is the waypoint currently being approached.
type DispatchSession struct {
	AmbulanceID   string      `json:"ambulanceId"`
	Name          string      `json:"name"`
	Origin        geo.Point   `json:"origin"`
	Target        geo.Point   `json:"target"`
	Current       geo.Point   `json:"current"`
	Waypoints     []geo.Point `json:"-"`
	WaypointIndex int         `json:"waypointIndex"`
	WaypointCount int         `json:"waypointCount"`
	SpeedMps      float64     `json:"speedMps"`
	TotalKm       float64     `json:"totalKm"`
	CoveredKm     float64     `json:"coveredKm"`
	Cancelled     bool        `json:"cancelled"`
	StartedAt     time.Time   `json:"startedAt"`
}

// RemainingKm is the distance still to cover, never negative.
func (s *DispatchSession) RemainingKm() float64 {
	return math.Max(0, s.TotalKm-s.CoveredKm)
}

// DeliverySession is the single medicine delivery being simulated. It moves
// straight from Shop to Destination while Running.
type DeliverySession struct {
	OrderID     string    `json:"orderId"`
	Medicine    string    `json:"medicine"`
	Pharmacy    string    `json:"pharmacy"`
	Shop        geo.Point `json:"shop"`
	Destination geo.Point `json:"destination"`
	Current     geo.Point `json:"current"`
	SpeedMps    float64   `json:"speedMps"`
	Running     bool      `json:"running"`
	Arrived     bool      `json:"arrived"`
}

// RemainingKm is the straight-line distance left to the destination.
func (d *DeliverySession) RemainingKm() float64 {
	return geo.HaversineKm(d.Current, d.Destination)
}

// WaypointCount returns max(20, ceil(distanceMeters/150)).
func WaypointCount(distanceMeters float64) int {
	n := int(math.Ceil(distanceMeters / WaypointSpacingMeters))
	if n < MinWaypoints {
		return MinWaypoints
	}
	return n
}

// BuildWaypoints returns count points evenly spaced along the straight
// lat/lng line from origin (excluded) to target (included). The last point is
// exactly target.
func BuildWaypoints(origin, target geo.Point, count int) []geo.Point {
	if count < 1 {
		count = 1
	}
	wps := make([]geo.Point, count)
	for i := 0; i < count-1; i++ {
		wps[i] = geo.Lerp(origin, target, float64(i+1)/float64(count))
	}
	wps[count-1] = target
	return wps
}

// kmphToMps converts km/h to m/s.
func kmphToMps(kmph float64) float64 {
	return kmph * 1000 / 3600
}
