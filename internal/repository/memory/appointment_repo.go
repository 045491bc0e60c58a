package memory

import (
	"context"

	"healthease/internal/domain/entities"
)

type AppointmentRepository struct {
	c *collection[entities.Appointment]
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{
		c: newCollection(func(v *entities.Appointment) string { return v.ID }),
	}
}

func (r *AppointmentRepository) Create(ctx context.Context, v *entities.Appointment) error {
	return r.c.create(ctx, v)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	return r.c.get(ctx, id)
}

func (r *AppointmentRepository) Update(ctx context.Context, v *entities.Appointment) error {
	return r.c.update(ctx, v)
}

func (r *AppointmentRepository) List(ctx context.Context) ([]*entities.Appointment, error) {
	return r.c.list(ctx)
}
