// Package seed fills an empty store with the demo fleet, doctors, medicines
// and telecalling requests.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"healthease/internal/domain/entities"
	"healthease/internal/repository"
	"healthease/pkg/utils"
)

type ambulanceSeed struct {
	name     string
	lat, lng float64
	status   string
	speed    float64
}

var ambulances = []ambulanceSeed{
	{"Ambulance A", 12.9719, 77.5946, entities.AmbulanceStatusAvailable, 50},
	{"Ambulance B", 12.9667, 77.5995, entities.AmbulanceStatusAvailable, 45},
	{"Ambulance C", 12.9750, 77.5840, entities.AmbulanceStatusBusy, 40},
	{"Ambulance D", 12.9800, 77.5900, entities.AmbulanceStatusUnavailable, 40},
	{"Ambulance E", 12.9650, 77.5820, entities.AmbulanceStatusAvailable, 48},
	{"Ambulance F", 12.9790, 77.6000, entities.AmbulanceStatusAvailable, 42},
	{"Ambulance G", 12.9740, 77.6100, entities.AmbulanceStatusBusy, 50},
	{"Ambulance H", 12.9680, 77.6050, entities.AmbulanceStatusAvailable, 45},
}

// Result counts what Run inserted.
type Result struct {
	Ambulances int `json:"ambulances"`
	Doctors    int `json:"doctors"`
	Medicines  int `json:"medicines"`
	Telecalls  int `json:"telecalls"`
}

// Run seeds store unless it already holds ambulances, in which case it
// returns a zero Result.
func Run(ctx context.Context, store *repository.Store, now time.Time, rng *rand.Rand) (Result, error) {
	var res Result
	existing, err := store.Ambulances.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list ambulances: %w", err)
	}
	if len(existing) > 0 {
		return res, nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(now.UnixNano()))
	}

	for _, s := range ambulances {
		loc := entities.NewLocation(s.lat, s.lng)
		a := entities.NewAmbulance(utils.GenerateID(), s.name, s.status, s.speed, &loc)
		a.CreatedAt, a.UpdatedAt = now, now
		if err := store.Ambulances.Create(ctx, a); err != nil {
			return res, fmt.Errorf("seed ambulance %s: %w", s.name, err)
		}
		res.Ambulances++
	}

	janeBack := time.Date(2026, time.October, 30, 0, 0, 0, 0, time.UTC)
	doctors := []*entities.Doctor{
		entities.NewDoctor(utils.GenerateID(), "Dr. Smith", "Cardiologist", true, []string{"09:00-12:00", "14:00-18:00"}, nil),
		entities.NewDoctor(utils.GenerateID(), "Dr. Jane", "Dermatologist", false, nil, &janeBack),
		entities.NewDoctor(utils.GenerateID(), "Dr. Mike", "Neurologist", true, []string{"10:00-16:00"}, nil),
	}
	for _, d := range doctors {
		d.CreatedAt, d.UpdatedAt = now, now
		if err := store.Doctors.Create(ctx, d); err != nil {
			return res, fmt.Errorf("seed doctor %s: %w", d.Name, err)
		}
		res.Doctors++
	}

	medicines := []*entities.Medicine{
		entities.NewMedicine(utils.GenerateID(), "Paracetamol", "City Pharmacy", "", 2.5, 50),
		entities.NewMedicine(utils.GenerateID(), "Aspirin", "HealthMart", "", 3.0, 20),
		entities.NewMedicine(utils.GenerateID(), "Amoxicillin", "MediStore", "", 5.0, 30),
	}
	for _, m := range medicines {
		if err := store.Medicines.Create(ctx, m); err != nil {
			return res, fmt.Errorf("seed medicine %s: %w", m.Name, err)
		}
		res.Medicines++
	}

	telecalls := []struct{ hospital, reason string }{
		{"Hospital A", "Need info about cardiologist"},
		{"Hospital B", "Appointment query"},
	}
	for i, t := range telecalls {
		// distinct timestamps keep the newest-first listing stable
		at := now.Add(-time.Duration(i) * time.Minute)
		r := entities.NewTelecallRequest(utils.GenerateID(), t.hospital, t.reason, entities.RandomPhone(rng), true, at)
		if err := store.Telecalls.Create(ctx, r); err != nil {
			return res, fmt.Errorf("seed telecall %s: %w", t.hospital, err)
		}
		res.Telecalls++
	}
	return res, nil
}
