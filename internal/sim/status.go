package sim

import (
	"fmt"

	"healthease/internal/domain/entities"
)

// Roster badges.
const (
	BadgeTracking  = "Tracking"
	BadgeBusy      = "Busy"
	BadgeEnRoute   = "En-route"
	BadgeAvailable = "Available"
)

// StatusLines is the text overlay: one line per moving ambulance, plus the
// delivery while it runs.
func (c *Context) StatusLines() []string {
	lines := make([]string, 0, len(c.order)+1)
	for _, id := range c.order {
		s := c.dispatches[id]
		lines = append(lines, fmt.Sprintf("%s — Covered: %.2f / %.2f km", s.Name, s.CoveredKm, s.TotalKm))
	}
	if d := c.delivery; d != nil && d.Running {
		lines = append(lines, fmt.Sprintf("Delivery (%s) — Remaining: %.2f km", d.Medicine, d.RemainingKm()))
	}
	return lines
}

// RosterEntry is one row of the ambulance list next to the map.
type RosterEntry struct {
	Ambulance   entities.Ambulance `json:"ambulance"`
	Badge       string             `json:"badge"`
	Tracking    bool               `json:"tracking"`
	CanDispatch bool               `json:"canDispatch"`
	RemainingKm *float64           `json:"remainingKm,omitempty"`
	CoveredKm   *float64           `json:"coveredKm,omitempty"`
	TotalKm     *float64           `json:"totalKm,omitempty"`
}

// Badge picks the roster badge for a.
func Badge(a *entities.Ambulance, tracking bool) string {
	switch {
	case tracking:
		return BadgeTracking
	case a.IsBusy():
		return BadgeBusy
	case a.IsEnRoute():
		return BadgeEnRoute
	default:
		return BadgeAvailable
	}
}

// Roster annotates ambulances with their badge and live progress.
func (c *Context) Roster(ambulances []entities.Ambulance) []RosterEntry {
	out := make([]RosterEntry, 0, len(ambulances))
	for _, a := range ambulances {
		e := RosterEntry{Ambulance: a}
		if s, ok := c.dispatches[a.ID]; ok {
			e.Tracking = true
			remaining, covered, total := s.RemainingKm(), s.CoveredKm, s.TotalKm
			e.RemainingKm, e.CoveredKm, e.TotalKm = &remaining, &covered, &total
		}
		e.Badge = Badge(&a, e.Tracking)
		e.CanDispatch = !e.Tracking && a.CanDispatch()
		out = append(out, e)
	}
	return out
}
