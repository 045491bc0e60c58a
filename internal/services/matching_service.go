package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/repository"
	"healthease/internal/sim"
)

var ErrNoAmbulanceAvailable = errors.New("No available ambulance nearby")

// matchLockTTL bounds how long one match may hold an ambulance.
const matchLockTTL = 5 * time.Second

// MatchResult is the ambulance chosen for a target and its dispatch.
type MatchResult struct {
	Ambulance  entities.Ambulance `json:"ambulance"`
	DistanceKm float64            `json:"distanceKm"`
	Dispatch   sim.DispatchResult `json:"dispatch"`
}

// MatchingService dispatches the nearest free ambulance to a target.
//
// Candidates come from the fleet's geohash index, nearest first. Each one is
// re-checked (status, not already moving) and then claimed with a lock on
// "ambulance:<id>" before it is dispatched, so two concurrent requests for
// nearby emergencies never send the same ambulance. A candidate that turns
// out busy or taken is skipped and the next one is tried.
//
// Go Learning Note — TryLock instead of Lock:
// Waiting for a lock held by another match would only end with that
// ambulance already dispatched. TryLock fails fast and the loop moves on to
// the next candidate, the same way a declined offer moves to the next one.
type MatchingService struct {
	ambulances *AmbulanceService
	tracking   *TrackingService
	locks      repository.LockManager
	radiusKm   float64
	logger     zerolog.Logger
}

func NewMatchingService(ambulances *AmbulanceService, tracking *TrackingService, locks repository.LockManager, radiusKm float64, logger zerolog.Logger) *MatchingService {
	if radiusKm <= 0 {
		radiusKm = 5
	}
	return &MatchingService{
		ambulances: ambulances,
		tracking:   tracking,
		locks:      locks,
		radiusKm:   radiusKm,
		logger:     logger.With().Str("component", "matching").Logger(),
	}
}

// DispatchNearest resolves target ("lat,lon", or blank for the user
// location) and dispatches the closest ambulance that can go.
func (s *MatchingService) DispatchNearest(ctx context.Context, target string) (*MatchResult, error) {
	p, err := s.tracking.ResolveTarget(target)
	if err != nil {
		return nil, err
	}
	// Dispatch resolves the target again; pin it so a user-location change
	// in between cannot redirect the ambulance.
	pinned := strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)

	candidates, err := s.ambulances.Nearby(ctx, p, s.radiusKm)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a := c.Ambulance
		if !a.CanDispatch() || s.tracking.IsDispatched(a.ID) {
			continue
		}

		key := "ambulance:" + a.ID
		acquired, err := s.locks.TryLock(ctx, key, matchLockTTL)
		if err != nil || !acquired {
			s.logger.Debug().Str("ambulance_id", a.ID).Msg("ambulance claimed by another match")
			continue
		}

		res, err := s.tracking.Dispatch(ctx, a.ID, pinned)
		_ = s.locks.Unlock(ctx, key)
		switch {
		case errors.Is(err, sim.ErrAmbulanceBusy), errors.Is(err, ErrAmbulanceNotFound):
			continue
		case err != nil:
			return nil, err
		case res.AlreadyActive:
			continue
		}

		s.logger.Info().
			Str("ambulance_id", a.ID).
			Float64("distance_km", c.DistanceKm).
			Int("candidates", len(candidates)).
			Msg("nearest ambulance dispatched")
		return &MatchResult{Ambulance: *a, DistanceKm: c.DistanceKm, Dispatch: res}, nil
	}

	s.logger.Warn().Float64("lat", p.Lat).Float64("lng", p.Lng).Int("candidates", len(candidates)).Msg("no ambulance available")
	return nil, ErrNoAmbulanceAvailable
}
