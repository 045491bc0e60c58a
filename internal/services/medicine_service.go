package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/repository"
	"healthease/pkg/utils"
)

var (
	ErrMedicineNotFound     = errors.New("Medicine not found")
	ErrMedicineNameRequired = errors.New("name is required")
	ErrInvalidQuantity      = errors.New("qty must be a positive number")
	ErrInvalidPrice         = errors.New("price and stock cannot be negative")
	ErrInsufficientStock    = entities.ErrInsufficientStock
)

const stockLockTTL = 5 * time.Second

// MedicineService manages the pharmacy catalogue and its stock.
//
// Go Learning Note — Distributed-Style Locks:
// Taking stock is a read-modify-write on one record. The LockManager holds a
// per-medicine lock ("medicine:<id>") around it so two concurrent orders can
// never both see the last unit. The TTL frees the lock even if a holder
// crashes before unlocking.
type MedicineService struct {
	repo   repository.MedicineRepository
	locks  repository.LockManager
	logger zerolog.Logger
}

func NewMedicineService(repo repository.MedicineRepository, locks repository.LockManager, logger zerolog.Logger) *MedicineService {
	return &MedicineService{
		repo:   repo,
		locks:  locks,
		logger: logger.With().Str("component", "medicines").Logger(),
	}
}

type CreateMedicineRequest struct {
	Name     string  `json:"name"`
	Pharmacy string  `json:"pharmacy"`
	Shop     string  `json:"shop"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

// List returns medicines whose name contains q, case-insensitively.
func (s *MedicineService) List(ctx context.Context, q string) ([]*entities.Medicine, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return list, nil
	}
	out := list[:0]
	for _, m := range list {
		if strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MedicineService) Get(ctx context.Context, id string) (*entities.Medicine, error) {
	m, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMedicineNotFound
	}
	return m, err
}

func (s *MedicineService) Create(ctx context.Context, req CreateMedicineRequest) (*entities.Medicine, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrMedicineNameRequired
	}
	if req.Price < 0 || req.Stock < 0 {
		return nil, ErrInvalidPrice
	}
	m := entities.NewMedicine(utils.GenerateID(), name, strings.TrimSpace(req.Pharmacy), strings.TrimSpace(req.Shop), req.Price, req.Stock)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create medicine: %w", err)
	}
	s.logger.Info().Str("medicine_id", m.ID).Str("name", m.Name).Int("stock", m.Stock).Msg("medicine created")
	return m, nil
}

// Order takes qty units out of stock. A qty of 0 means 1.
func (s *MedicineService) Order(ctx context.Context, id string, qty int) (*entities.Medicine, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}

	key := "medicine:" + id
	if err := s.locks.Lock(ctx, key, stockLockTTL); err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	defer s.locks.Unlock(ctx, key)

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.Take(qty); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info().Str("medicine_id", id).Int("qty", qty).Int("stock", m.Stock).Msg("stock taken")
	return m, nil
}

// Restock returns qty units taken by Order.
func (s *MedicineService) Restock(ctx context.Context, id string, qty int) error {
	key := "medicine:" + id
	if err := s.locks.Lock(ctx, key, stockLockTTL); err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer s.locks.Unlock(ctx, key)

	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	m.Restock(qty)
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}
	s.logger.Info().Str("medicine_id", id).Int("qty", qty).Int("stock", m.Stock).Msg("stock returned")
	return nil
}
