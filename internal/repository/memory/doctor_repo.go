package memory

import (
	"context"

	"healthease/internal/domain/entities"
)

type DoctorRepository struct {
	c *collection[entities.Doctor]
}

func NewDoctorRepository() *DoctorRepository {
	return &DoctorRepository{
		c: newCollection(func(v *entities.Doctor) string { return v.ID }),
	}
}

func (r *DoctorRepository) Create(ctx context.Context, v *entities.Doctor) error {
	return r.c.create(ctx, v)
}

func (r *DoctorRepository) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	return r.c.get(ctx, id)
}

func (r *DoctorRepository) Update(ctx context.Context, v *entities.Doctor) error {
	return r.c.update(ctx, v)
}

func (r *DoctorRepository) List(ctx context.Context) ([]*entities.Doctor, error) {
	return r.c.list(ctx)
}
