package entities

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// DefaultDisease is recorded when a booking does not name one.
const DefaultDisease = "General"

type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "Booked"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

var validAppointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusBooked:    {AppointmentStatusCancelled},
	AppointmentStatusCancelled: {},
}

type Appointment struct {
	ID        string            `json:"id"`
	Patient   string            `json:"patient"`
	Mobile    string            `json:"mobile,omitempty"`
	Disease   string            `json:"disease"`
	Date      time.Time         `json:"date"`
	Status    AppointmentStatus `json:"status"`
	DoctorID  string            `json:"doctorId,omitempty"`
	Doctor    *DoctorSummary    `json:"doctor,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewAppointment creates a Booked appointment.
func NewAppointment(id, patient, mobile, disease string, date time.Time, doctorID string) *Appointment {
	if disease == "" {
		disease = DefaultDisease
	}
	now := time.Now()
	return &Appointment{
		ID:        id,
		Patient:   patient,
		Mobile:    mobile,
		Disease:   disease,
		Date:      date,
		Status:    AppointmentStatusBooked,
		DoctorID:  doctorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Cancel moves a Booked appointment to Cancelled.
func (a *Appointment) Cancel() error {
	for _, s := range validAppointmentTransitions[a.Status] {
		if s == AppointmentStatusCancelled {
			a.Status = AppointmentStatusCancelled
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, AppointmentStatusCancelled)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps as well as the bare "YYYY-MM-DD" and
// "YYYY-MM-DDTHH:MM" forms HTML date inputs produce.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
