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
	ErrDoctorNotFound     = errors.New("Doctor not found")
	ErrDoctorNameRequired = errors.New("name is required")
	ErrInvalidLeaveDate   = errors.New("onLeaveUntil must be a date (YYYY-MM-DD)")
)

// diseaseSpecializations maps common complaints to the specializations that
// treat them. A search for one of these keywords matches by specialization
// instead of by text.
var diseaseSpecializations = map[string][]string{
	"fever": {"General Physician", "Internal Medicine"},
	"heart": {"Cardiologist"},
	"skin":  {"Dermatologist"},
	"child": {"Pediatrician"},
	"ear":   {"ENT"},
	"bone":  {"Orthopedic"},
	"brain": {"Neurologist"},
}

type DoctorService struct {
	repo   repository.DoctorRepository
	logger zerolog.Logger
}

func NewDoctorService(repo repository.DoctorRepository, logger zerolog.Logger) *DoctorService {
	return &DoctorService{
		repo:   repo,
		logger: logger.With().Str("component", "doctors").Logger(),
	}
}

// DoctorFilter narrows a doctor listing. Q is either a disease keyword or
// free text matched against name and specialization.
type DoctorFilter struct {
	Q              string
	Specialization string
}

type CreateDoctorRequest struct {
	Name              string   `json:"name"`
	Specialization    string   `json:"specialization"`
	Available         *bool    `json:"available"`
	AvailabilityTimes []string `json:"availabilityTimes"`
	OnLeaveUntil      string   `json:"onLeaveUntil"`
}

// UpdateDoctorRequest is a partial update. An empty OnLeaveUntil string
// clears the leave.
type UpdateDoctorRequest struct {
	Name              *string  `json:"name"`
	Specialization    *string  `json:"specialization"`
	Available         *bool    `json:"available"`
	AvailabilityTimes []string `json:"availabilityTimes"`
	OnLeaveUntil      *string  `json:"onLeaveUntil"`
}

func (s *DoctorService) List(ctx context.Context, f DoctorFilter) ([]*entities.Doctor, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if q := strings.ToLower(strings.TrimSpace(f.Q)); q != "" {
		list = filterDoctors(list, func(d *entities.Doctor) bool {
			if specs, ok := diseaseSpecializations[q]; ok {
				return contains(specs, d.Specialization)
			}
			return strings.Contains(strings.ToLower(d.Name), q) ||
				strings.Contains(strings.ToLower(d.Specialization), q)
		})
	}
	if f.Specialization != "" {
		list = filterDoctors(list, func(d *entities.Doctor) bool {
			return d.Specialization == f.Specialization
		})
	}
	return list, nil
}

func (s *DoctorService) Get(ctx context.Context, id string) (*entities.Doctor, error) {
	d, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrDoctorNotFound
	}
	return d, err
}

func (s *DoctorService) Create(ctx context.Context, req CreateDoctorRequest) (*entities.Doctor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrDoctorNameRequired
	}
	leave, err := parseLeave(req.OnLeaveUntil)
	if err != nil {
		return nil, err
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	d := entities.NewDoctor(utils.GenerateID(), name, strings.TrimSpace(req.Specialization), available, req.AvailabilityTimes, leave)
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	s.logger.Info().Str("doctor_id", d.ID).Str("name", d.Name).Msg("doctor created")
	return d, nil
}

func (s *DoctorService) Update(ctx context.Context, id string, req UpdateDoctorRequest) (*entities.Doctor, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrDoctorNameRequired
		}
		d.Name = name
	}
	if req.Specialization != nil {
		d.Specialization = strings.TrimSpace(*req.Specialization)
		if d.Specialization == "" {
			d.Specialization = entities.DefaultSpecialization
		}
	}
	if req.Available != nil {
		d.Available = *req.Available
	}
	if req.AvailabilityTimes != nil {
		d.AvailabilityTimes = req.AvailabilityTimes
	}
	if req.OnLeaveUntil != nil {
		leave, err := parseLeave(*req.OnLeaveUntil)
		if err != nil {
			return nil, err
		}
		d.OnLeaveUntil = leave
	}
	d.UpdatedAt = timeNow()

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// parseLeave turns "YYYY-MM-DD" (or any accepted date form) into the first
// instant of that day. Empty means no leave.
func parseLeave(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := entities.ParseDate(s)
	if err != nil {
		return nil, ErrInvalidLeaveDate
	}
	day := dateOnly(t)
	return &day, nil
}

func filterDoctors(list []*entities.Doctor, keep func(*entities.Doctor) bool) []*entities.Doctor {
	out := list[:0]
	for _, d := range list {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
