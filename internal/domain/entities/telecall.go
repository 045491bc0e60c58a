package entities

import (
	"fmt"
	"math/rand"
	"time"
)

// TelecallRequest is a hospital's request to be called back.
type TelecallRequest struct {
	ID           string    `json:"id"`
	HospitalName string    `json:"hospitalName"`
	Reason       string    `json:"reason"`
	Phone        string    `json:"phone"`
	Available    bool      `json:"available"`
	RequestedAt  time.Time `json:"requestedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewTelecallRequest(id, hospital, reason, phone string, available bool, now time.Time) *TelecallRequest {
	return &TelecallRequest{
		ID:           id,
		HospitalName: hospital,
		Reason:       reason,
		Phone:        phone,
		Available:    available,
		RequestedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RandomPhone returns a placeholder Indian number, "+91-" and 10 digits.
func RandomPhone(rng *rand.Rand) string {
	return fmt.Sprintf("+91-%d", 1000000000+rng.Int63n(9000000000))
}
