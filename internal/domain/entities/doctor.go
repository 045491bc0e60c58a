package entities

import "time"

// DefaultSpecialization is used for doctors created without one.
const DefaultSpecialization = "General"

type Doctor struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Specialization    string     `json:"specialization"`
	Available         bool       `json:"available"`
	AvailabilityTimes []string   `json:"availabilityTimes"`
	OnLeaveUntil      *time.Time `json:"onLeaveUntil,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func NewDoctor(id, name, specialization string, available bool, times []string, onLeaveUntil *time.Time) *Doctor {
	if specialization == "" {
		specialization = DefaultSpecialization
	}
	if times == nil {
		times = []string{}
	}
	now := time.Now()
	return &Doctor{
		ID:                id,
		Name:              name,
		Specialization:    specialization,
		Available:         available,
		AvailabilityTimes: times,
		OnLeaveUntil:      onLeaveUntil,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// OnLeaveOn reports whether day falls on or before the doctor's leave end.
func (d *Doctor) OnLeaveOn(day time.Time) bool {
	return d.OnLeaveUntil != nil && !day.After(*d.OnLeaveUntil)
}

// Summary is the slice of a doctor embedded in appointment listings.
func (d *Doctor) Summary() *DoctorSummary {
	return &DoctorSummary{ID: d.ID, Name: d.Name, Specialization: d.Specialization}
}

type DoctorSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}
