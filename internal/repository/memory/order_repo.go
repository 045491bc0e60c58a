package memory

import (
	"context"

	"healthease/internal/domain/entities"
)

type OrderRepository struct {
	c *collection[entities.Order]
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		c: newCollection(func(v *entities.Order) string { return v.ID }),
	}
}

func (r *OrderRepository) Create(ctx context.Context, v *entities.Order) error {
	return r.c.create(ctx, v)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entities.Order, error) {
	return r.c.get(ctx, id)
}

func (r *OrderRepository) Update(ctx context.Context, v *entities.Order) error {
	return r.c.update(ctx, v)
}

func (r *OrderRepository) List(ctx context.Context) ([]*entities.Order, error) {
	return r.c.list(ctx)
}
