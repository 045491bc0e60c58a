// Package sim is the map simulation: a registry of objects drawn on the map,
// ambulance dispatch sessions and a single medicine delivery session that
// move at constant speed, reconciliation against backend snapshots, and the
// scheduler that drives frames only while something is moving.
//
// A Context is not safe for concurrent use. Callers serialize access, which
// is what services.TrackingService does with a single mutex.
package sim

import (
	"healthease/internal/domain/entities"
	"healthease/internal/geo"
)

// Kind classifies a MapObject.
type Kind string

const (
	KindAmbulance   Kind = "ambulance"
	KindDelivery    Kind = "delivery"
	KindUser        Kind = "user"
	KindPharmacy    Kind = "pharmacy"
	KindDestination Kind = "destination"
)

// Icon ids resolved by the renderer's icon cache.
const (
	IconAmbulance = "ambulance"
	IconDelivery  = "delivery"
)

const (
	ambulanceTrailCap = 250
	deliveryTrailCap  = 200
)

const (
	UserObjectID = "user_loc"

	ambulancePrefix   = "amb_"
	deliveryPrefix    = "del_"
	pharmacyPrefix    = "shop_"
	destinationPrefix = "dest_"
)

// Marker colors.
const (
	ColorDefault  = "#1976d2"
	ColorPharmacy = "#2e7d32"
	ColorUser     = "#1976d2"
)

// MapObject is anything drawn on the map.
type MapObject struct {
	ID       string              `json:"id"`
	Kind     Kind                `json:"kind"`
	Position geo.Point           `json:"position"`
	Trail    []geo.Point         `json:"trail,omitempty"`
	Icon     string              `json:"icon,omitempty"`
	Label    string              `json:"label"`
	Color    string              `json:"color,omitempty"`
	Meta     *entities.Ambulance `json:"meta,omitempty"`
}

// AmbulanceObjectID is the map object id of an ambulance.
func AmbulanceObjectID(ambulanceID string) string { return ambulancePrefix + ambulanceID }

func deliveryObjectID(orderID string) string    { return deliveryPrefix + orderID }
func pharmacyObjectID(orderID string) string    { return pharmacyPrefix + orderID }
func destinationObjectID(orderID string) string { return destinationPrefix + orderID }

// appendTrail adds p and drops the oldest points beyond limit.
func (o *MapObject) appendTrail(p geo.Point, limit int) {
	o.Trail = append(o.Trail, p)
	if n := len(o.Trail); n > limit {
		o.Trail = append(o.Trail[:0:0], o.Trail[n-limit:]...)
	}
}

// Clone returns a deep copy that shares no memory with o.
func (o *MapObject) Clone() *MapObject {
	c := *o
	if o.Trail != nil {
		c.Trail = append([]geo.Point(nil), o.Trail...)
	}
	if o.Meta != nil {
		m := *o.Meta
		c.Meta = &m
	}
	return &c
}
