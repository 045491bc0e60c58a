package memory

import (
	"context"

	"healthease/internal/domain/entities"
)

type AmbulanceRepository struct {
	c *collection[entities.Ambulance]
}

func NewAmbulanceRepository() *AmbulanceRepository {
	return &AmbulanceRepository{
		c: newCollection(func(v *entities.Ambulance) string { return v.ID }),
	}
}

func (r *AmbulanceRepository) Create(ctx context.Context, v *entities.Ambulance) error {
	return r.c.create(ctx, v)
}

func (r *AmbulanceRepository) GetByID(ctx context.Context, id string) (*entities.Ambulance, error) {
	return r.c.get(ctx, id)
}

func (r *AmbulanceRepository) Update(ctx context.Context, v *entities.Ambulance) error {
	return r.c.update(ctx, v)
}

func (r *AmbulanceRepository) List(ctx context.Context) ([]*entities.Ambulance, error) {
	return r.c.list(ctx)
}

func (r *AmbulanceRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}
