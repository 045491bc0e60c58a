package memory

import (
	"context"

	"healthease/internal/domain/entities"
)

type MedicineRepository struct {
	c *collection[entities.Medicine]
}

func NewMedicineRepository() *MedicineRepository {
	return &MedicineRepository{
		c: newCollection(func(v *entities.Medicine) string { return v.ID }),
	}
}

func (r *MedicineRepository) Create(ctx context.Context, v *entities.Medicine) error {
	return r.c.create(ctx, v)
}

func (r *MedicineRepository) GetByID(ctx context.Context, id string) (*entities.Medicine, error) {
	return r.c.get(ctx, id)
}

func (r *MedicineRepository) Update(ctx context.Context, v *entities.Medicine) error {
	return r.c.update(ctx, v)
}

func (r *MedicineRepository) List(ctx context.Context) ([]*entities.Medicine, error) {
	return r.c.list(ctx)
}
