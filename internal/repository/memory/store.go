package memory

import (
	"context"
	"sync"

	"healthease/internal/repository"
)

// collection is a map of records guarded by a RWMutex. Records are copied on
// the way in and out so callers never share memory with the store.
//
// Go Learning Note — Generics:
// collection[T] is written once and instantiated per entity type. The only
// thing it needs to know about T is how to read its id, which is passed in as
// a function instead of constraining T with an interface.
type collection[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
	idOf  func(*T) string
}

func newCollection[T any](idOf func(*T) string) *collection[T] {
	return &collection[T]{
		items: make(map[string]T),
		idOf:  idOf,
	}
}

func (c *collection[T]) create(_ context.Context, v *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.idOf(v)
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = *v
	return nil
}

func (c *collection[T]) get(_ context.Context, id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, exists := c.items[id]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (c *collection[T]) update(_ context.Context, v *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.idOf(v)
	if _, exists := c.items[id]; !exists {
		return repository.ErrNotFound
	}
	c.items[id] = *v
	return nil
}

func (c *collection[T]) delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[id]; !exists {
		return repository.ErrNotFound
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// list returns copies in insertion order.
func (c *collection[T]) list(_ context.Context) ([]*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*T, 0, len(c.order))
	for _, id := range c.order {
		v := c.items[id]
		out = append(out, &v)
	}
	return out, nil
}

// NewStore returns an empty in-memory repository.Store.
func NewStore() *repository.Store {
	return &repository.Store{
		Ambulances:   NewAmbulanceRepository(),
		Doctors:      NewDoctorRepository(),
		Appointments: NewAppointmentRepository(),
		Medicines:    NewMedicineRepository(),
		Telecalls:    NewTelecallRepository(),
		Orders:       NewOrderRepository(),
	}
}
