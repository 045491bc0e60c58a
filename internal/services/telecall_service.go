package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/repository"
	"healthease/pkg/utils"
)

var ErrTelecallFieldsRequired = errors.New("hospitalName and reason required")

type TelecallService struct {
	repo   repository.TelecallRepository
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewTelecallService(repo repository.TelecallRepository, rng *rand.Rand, logger zerolog.Logger) *TelecallService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &TelecallService{
		repo:   repo,
		rng:    rng,
		logger: logger.With().Str("component", "telecalling").Logger(),
	}
}

type CreateTelecallRequest struct {
	HospitalName string `json:"hospitalName"`
	Reason       string `json:"reason"`
	Phone        string `json:"phone"`
	Available    *bool  `json:"available"`
}

// List returns requests newest first.
func (s *TelecallService) List(ctx context.Context) ([]*entities.TelecallRequest, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].RequestedAt.After(list[j].RequestedAt)
	})
	return list, nil
}

// Create records a callback request. A missing phone gets a placeholder
// number and availability defaults to true.
func (s *TelecallService) Create(ctx context.Context, req CreateTelecallRequest) (*entities.TelecallRequest, error) {
	hospital := strings.TrimSpace(req.HospitalName)
	reason := strings.TrimSpace(req.Reason)
	if hospital == "" || reason == "" {
		return nil, ErrTelecallFieldsRequired
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		s.mu.Lock()
		phone = entities.RandomPhone(s.rng)
		s.mu.Unlock()
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	tr := entities.NewTelecallRequest(utils.GenerateID(), hospital, reason, phone, available, timeNow())
	if err := s.repo.Create(ctx, tr); err != nil {
		return nil, fmt.Errorf("create telecall request: %w", err)
	}
	s.logger.Info().Str("request_id", tr.ID).Str("hospital", hospital).Msg("telecall requested")
	return tr, nil
}
