package entities

import (
	"regexp"
	"time"
)

// Ambulance status values seen in the fleet. The field is free text, so
// matching is done with patterns rather than equality.
const (
	AmbulanceStatusAvailable   = "Available"
	AmbulanceStatusBusy        = "Busy"
	AmbulanceStatusUnavailable = "Unavailable"
)

// DefaultAmbulanceSpeedKmph is applied when a new ambulance has no speed.
const DefaultAmbulanceSpeedKmph = 40.0

var (
	busyPattern    = regexp.MustCompile(`(?i)busy|unavailable|occupied`)
	enRoutePattern = regexp.MustCompile(`(?i)pending|en[- ]?route|dispatched|enroute`)
)

// Ambulance is a fleet vehicle. Demo marks synthetic ambulances added to
// keep the map populated; they are never persisted.
type Ambulance struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	SpeedKmph float64   `json:"speedKmph"`
	Location  *Location `json:"location,omitempty"`
	Demo      bool      `json:"demo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewAmbulance builds an ambulance and applies the record defaults
// (status Available, 40 km/h).
func NewAmbulance(id, name, status string, speedKmph float64, loc *Location) *Ambulance {
	if status == "" {
		status = AmbulanceStatusAvailable
	}
	if speedKmph <= 0 {
		speedKmph = DefaultAmbulanceSpeedKmph
	}
	now := time.Now()
	return &Ambulance{
		ID:        id,
		Name:      name,
		Status:    status,
		SpeedKmph: speedKmph,
		Location:  loc,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DisplayName is the name, or "Amb-<id>" when the record has none.
func (a *Ambulance) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return "Amb-" + a.ID
}

// IsBusy reports whether the status reads as busy, unavailable or occupied.
func (a *Ambulance) IsBusy() bool {
	return busyPattern.MatchString(a.Status)
}

// IsEnRoute reports whether the status reads as pending or already en route.
func (a *Ambulance) IsEnRoute() bool {
	return enRoutePattern.MatchString(a.Status)
}

// CanDispatch is true for demo ambulances and for any ambulance not busy.
func (a *Ambulance) CanDispatch() bool {
	return a.Demo || !a.IsBusy()
}
