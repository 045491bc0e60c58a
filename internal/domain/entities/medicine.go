package entities

import (
	"errors"
	"time"
)

// ErrInsufficientStock is returned when an order asks for more than is left.
var ErrInsufficientStock = errors.New("Insufficient stock available")

type Medicine struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pharmacy  string    `json:"pharmacy,omitempty"`
	Shop      string    `json:"shop,omitempty"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewMedicine(id, name, pharmacy, shop string, price float64, stock int) *Medicine {
	now := time.Now()
	return &Medicine{
		ID:        id,
		Name:      name,
		Pharmacy:  pharmacy,
		Shop:      shop,
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PharmacyName falls back from pharmacy to shop to "Pharmacy".
func (m *Medicine) PharmacyName() string {
	switch {
	case m.Pharmacy != "":
		return m.Pharmacy
	case m.Shop != "":
		return m.Shop
	default:
		return "Pharmacy"
	}
}

// Take removes qty units from stock.
func (m *Medicine) Take(qty int) error {
	if qty <= 0 || m.Stock < qty {
		return ErrInsufficientStock
	}
	m.Stock -= qty
	m.UpdatedAt = time.Now()
	return nil
}

// Restock puts qty units back, e.g. when an order could not be stored.
func (m *Medicine) Restock(qty int) {
	if qty <= 0 {
		return
	}
	m.Stock += qty
	m.UpdatedAt = time.Now()
}
