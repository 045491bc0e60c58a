// Package repository declares the storage contracts the services depend on.
// Two implementations exist: memory (maps behind a RWMutex) and sqlite (JSON
// documents in SQLite tables). Both return ErrNotFound for unknown ids.
package repository

import (
	"context"
	"errors"
	"time"

	"healthease/internal/domain/entities"
)

var ErrNotFound = errors.New("record not found")

type AmbulanceRepository interface {
	Create(ctx context.Context, ambulance *entities.Ambulance) error
	GetByID(ctx context.Context, id string) (*entities.Ambulance, error)
	Update(ctx context.Context, ambulance *entities.Ambulance) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entities.Ambulance, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *entities.Doctor) error
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)
	Update(ctx context.Context, doctor *entities.Doctor) error
	List(ctx context.Context) ([]*entities.Doctor, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entities.Appointment) error
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)
	Update(ctx context.Context, appointment *entities.Appointment) error
	List(ctx context.Context) ([]*entities.Appointment, error)
}

type MedicineRepository interface {
	Create(ctx context.Context, medicine *entities.Medicine) error
	GetByID(ctx context.Context, id string) (*entities.Medicine, error)
	Update(ctx context.Context, medicine *entities.Medicine) error
	List(ctx context.Context) ([]*entities.Medicine, error)
}

type TelecallRepository interface {
	Create(ctx context.Context, request *entities.TelecallRequest) error
	List(ctx context.Context) ([]*entities.TelecallRequest, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *entities.Order) error
	GetByID(ctx context.Context, id string) (*entities.Order, error)
	Update(ctx context.Context, order *entities.Order) error
	List(ctx context.Context) ([]*entities.Order, error)
}

// Store bundles one repository per collection.
type Store struct {
	Ambulances   AmbulanceRepository
	Doctors      DoctorRepository
	Appointments AppointmentRepository
	Medicines    MedicineRepository
	Telecalls    TelecallRepository
	Orders       OrderRepository
}

// LockManager hands out named, expiring locks. Services use it to make
// read-modify-write sequences on a single record atomic.
type LockManager interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Lock(ctx context.Context, key string, ttl time.Duration) error
	Unlock(ctx context.Context, key string) error
	IsLocked(ctx context.Context, key string) (bool, error)
}
