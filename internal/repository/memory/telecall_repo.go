package memory

import (
	"context"

	"healthease/internal/domain/entities"
)

type TelecallRepository struct {
	c *collection[entities.TelecallRequest]
}

func NewTelecallRepository() *TelecallRepository {
	return &TelecallRepository{
		c: newCollection(func(v *entities.TelecallRequest) string { return v.ID }),
	}
}

func (r *TelecallRepository) Create(ctx context.Context, v *entities.TelecallRequest) error {
	return r.c.create(ctx, v)
}

func (r *TelecallRepository) List(ctx context.Context) ([]*entities.TelecallRequest, error) {
	return r.c.list(ctx)
}
