package sim

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/geo"
)

// LoadFailedMessage is recorded as the last error when a fetch fails.
const LoadFailedMessage = "failed to load ambulances"

// ErrLoadFailed wraps the underlying fetch error returned by SyncNow.
var ErrLoadFailed = errors.New(LoadFailedMessage)

// AmbulanceSource provides ambulance snapshots.
type AmbulanceSource interface {
	ListAmbulances(ctx context.Context) ([]entities.Ambulance, error)
}

// SyncConfig configures a Syncer.
type SyncConfig struct {
	Interval   time.Duration
	MinVisible int
	Center     geo.Point
	Rand       *rand.Rand
}

// Syncer periodically fetches the ambulance roster, pads it with demo
// ambulances and hands it to apply. Fetching happens without any simulation
// lock held; apply is expected to take it.
//
// Go Learning Note — Two mutexes:
// syncMu serializes whole sync rounds so two overlapping SyncNow calls
// cannot apply snapshots out of order. mu only guards the cached roster and
// last error, so readers never wait behind a slow fetch.
type Syncer struct {
	source AmbulanceSource
	apply  func([]entities.Ambulance)
	cfg    SyncConfig
	logger zerolog.Logger

	syncMu sync.Mutex

	mu        sync.RWMutex
	roster    []entities.Ambulance
	demo      map[string]entities.Ambulance
	lastErr   string
	lastSync  time.Time
	succeeded bool
}

func NewSyncer(cfg SyncConfig, source AmbulanceSource, apply func([]entities.Ambulance), logger zerolog.Logger) *Syncer {
	if cfg.Interval <= 0 {
		cfg.Interval = 20 * time.Second
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Center == (geo.Point{}) {
		cfg.Center = DemoCenter
	}
	return &Syncer{
		source: source,
		apply:  apply,
		cfg:    cfg,
		logger: logger.With().Str("component", "syncer").Logger(),
		demo:   make(map[string]entities.Ambulance),
	}
}

// SyncNow fetches and applies one snapshot. On failure the error is logged
// and remembered, the previous roster is kept, and nothing is retried.
func (s *Syncer) SyncNow(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	fleet, err := s.source.ListAmbulances(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg(LoadFailedMessage)
		s.mu.Lock()
		s.lastErr = LoadFailedMessage
		s.mu.Unlock()
		return errors.Join(ErrLoadFailed, err)
	}

	roster := append(make([]entities.Ambulance, 0, len(fleet)), fleet...)
	roster = append(roster, s.padding(fleet)...)

	s.mu.Lock()
	s.roster = roster
	s.lastErr = ""
	s.lastSync = time.Now()
	s.succeeded = true
	s.mu.Unlock()

	if s.apply != nil {
		s.apply(roster)
	}
	s.logger.Debug().Int("ambulances", len(fleet)).Int("roster", len(roster)).Msg("roster synced")
	return nil
}

// padding returns demo ambulances for this snapshot, reusing the ones from
// earlier rounds so they do not jump around between syncs.
func (s *Syncer) padding(fleet []entities.Ambulance) []entities.Ambulance {
	fresh := SyntheticAmbulances(fleet, s.cfg.MinVisible, s.cfg.Center, s.cfg.Rand)
	for i, a := range fresh {
		if cached, ok := s.demo[a.ID]; ok {
			fresh[i] = cached
		} else {
			s.demo[a.ID] = a
		}
	}
	return fresh
}

// Run syncs immediately and then every interval until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	_ = s.SyncNow(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.SyncNow(ctx)
		}
	}
}

// Roster returns a copy of the last successfully synced roster.
func (s *Syncer) Roster() []entities.Ambulance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Ambulance(nil), s.roster...)
}

// Lookup finds an ambulance, real or demo, in the last roster.
func (s *Syncer) Lookup(id string) (entities.Ambulance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.roster {
		if a.ID == id {
			return a, true
		}
	}
	return entities.Ambulance{}, false
}

// LastError is "" after a successful sync and LoadFailedMessage after a
// failed one.
func (s *Syncer) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// LastSync is the time of the last successful sync.
func (s *Syncer) LastSync() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync, s.succeeded
}
