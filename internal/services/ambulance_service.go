package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/geo"
	"healthease/internal/repository"
	"healthease/pkg/utils"
)

var (
	ErrAmbulanceNotFound = errors.New("Ambulance not found")
	ErrInvalidLocation   = errors.New("lat must be within ±90 and lon within ±180")
	ErrInvalidSpeed      = errors.New("speedKmph cannot be negative")
	ErrInvalidRadius     = errors.New("radiusKm must be positive")
)

// AmbulanceService manages the fleet records and keeps a geohash index of
// their reported positions for proximity queries.
type AmbulanceService struct {
	repo   repository.AmbulanceRepository
	index  *geo.SpatialIndex
	logger zerolog.Logger
}

func NewAmbulanceService(repo repository.AmbulanceRepository, index *geo.SpatialIndex, logger zerolog.Logger) *AmbulanceService {
	return &AmbulanceService{
		repo:   repo,
		index:  index,
		logger: logger.With().Str("component", "ambulances").Logger(),
	}
}

// CreateAmbulanceRequest is the body of POST /api/ambulances. The location
// is only recorded when both lat and lon are present.
type CreateAmbulanceRequest struct {
	Name      string   `json:"name"`
	Status    string   `json:"status"`
	SpeedKmph *float64 `json:"speedKmph"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

// UpdateAmbulanceRequest is a partial update. Nil fields are left alone;
// lat and lon only apply together.
type UpdateAmbulanceRequest struct {
	Status    *string  `json:"status"`
	SpeedKmph *float64 `json:"speedKmph"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
}

// NearbyAmbulance is an ambulance with its distance from a query point.
type NearbyAmbulance struct {
	Ambulance  *entities.Ambulance `json:"ambulance"`
	DistanceKm float64             `json:"distanceKm"`
}

// RebuildIndex loads every stored position into the spatial index. It is
// called once at startup.
func (s *AmbulanceService) RebuildIndex(ctx context.Context) error {
	list, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	s.index.Reset()
	for _, a := range list {
		s.indexAmbulance(a)
	}
	s.logger.Debug().Int("ambulances", s.index.Count()).Msg("spatial index rebuilt")
	return nil
}

// List returns all ambulances sorted by name.
func (s *AmbulanceService) List(ctx context.Context) ([]*entities.Ambulance, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
	return list, nil
}

// ListAmbulances returns the fleet as values. It lets the service act as the
// in-process roster source of the map syncer.
func (s *AmbulanceService) ListAmbulances(ctx context.Context) ([]entities.Ambulance, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Ambulance, len(list))
	for i, a := range list {
		out[i] = *a
	}
	return out, nil
}

func (s *AmbulanceService) Get(ctx context.Context, id string) (*entities.Ambulance, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAmbulanceNotFound
	}
	return a, err
}

// Create stores a new ambulance, defaulting status to Available and speed to
// 40 km/h.
func (s *AmbulanceService) Create(ctx context.Context, req CreateAmbulanceRequest) (*entities.Ambulance, error) {
	var speed float64
	if req.SpeedKmph != nil {
		if *req.SpeedKmph < 0 {
			return nil, ErrInvalidSpeed
		}
		speed = *req.SpeedKmph
	}
	loc, err := locationFrom(req.Lat, req.Lon)
	if err != nil {
		return nil, err
	}

	a := entities.NewAmbulance(utils.GenerateID(), strings.TrimSpace(req.Name), req.Status, speed, loc)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create ambulance: %w", err)
	}
	s.indexAmbulance(a)

	s.logger.Info().Str("ambulance_id", a.ID).Str("name", a.Name).Msg("ambulance created")
	return a, nil
}

// Update applies a partial update.
func (s *AmbulanceService) Update(ctx context.Context, id string, req UpdateAmbulanceRequest) (*entities.Ambulance, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Lat != nil && req.Lon != nil {
		loc, err := locationFrom(req.Lat, req.Lon)
		if err != nil {
			return nil, err
		}
		a.Location = loc
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	if req.SpeedKmph != nil {
		if *req.SpeedKmph < 0 {
			return nil, ErrInvalidSpeed
		}
		a.SpeedKmph = *req.SpeedKmph
	}
	a.UpdatedAt = timeNow()

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAmbulanceNotFound
		}
		return nil, err
	}
	s.indexAmbulance(a)
	return a, nil
}

func (s *AmbulanceService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAmbulanceNotFound
	}
	if err != nil {
		return err
	}
	s.index.Remove(id)
	s.logger.Info().Str("ambulance_id", id).Msg("ambulance removed")
	return nil
}

// Nearby returns ambulances whose recorded location lies within radiusKm of
// center, nearest first.
func (s *AmbulanceService) Nearby(ctx context.Context, center geo.Point, radiusKm float64) ([]NearbyAmbulance, error) {
	if radiusKm <= 0 {
		return nil, ErrInvalidRadius
	}
	hits := s.index.FindNearby(center, radiusKm)
	out := make([]NearbyAmbulance, 0, len(hits))
	for _, h := range hits {
		a, err := s.repo.GetByID(ctx, h.ID)
		if err != nil {
			// Deleted between the index lookup and now.
			continue
		}
		out = append(out, NearbyAmbulance{Ambulance: a, DistanceKm: h.DistanceKm})
	}
	return out, nil
}

func (s *AmbulanceService) indexAmbulance(a *entities.Ambulance) {
	if a.Location == nil {
		s.index.Remove(a.ID)
		return
	}
	s.index.Update(a.ID, a.Location.Point())
}

func locationFrom(lat, lon *float64) (*entities.Location, error) {
	if lat == nil || lon == nil {
		return nil, nil
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return nil, ErrInvalidLocation
	}
	loc := entities.NewLocation(*lat, *lon)
	return &loc, nil
}
