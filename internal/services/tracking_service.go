package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/geo"
	"healthease/internal/render"
	"healthease/internal/sim"
)

// ErrInvalidFrameSize is returned for frame requests outside 1..4096 pixels.
var ErrInvalidFrameSize = errors.New("w and h must be between 1 and 4096")

const maxFrameSize = 4096

// FramePublisher pushes rendered frames to live viewers. PublishFrame must
// not block.
type FramePublisher interface {
	PublishFrame(frame *render.DisplayList)
}

// TrackingConfig configures the map simulation.
type TrackingConfig struct {
	FrameInterval time.Duration
	FrameWidth    float64
	FrameHeight   float64
	Sync          sim.SyncConfig
	Rand          *rand.Rand
	Now           func() time.Time
}

// MapState is the full map snapshot served at /api/map/state.
type MapState struct {
	Objects      []*sim.MapObject      `json:"objects"`
	Bounds       geo.BoundingBox       `json:"bounds"`
	Dispatches   []sim.DispatchSession `json:"dispatches"`
	Delivery     *sim.DeliverySession  `json:"delivery,omitempty"`
	UserLocation *geo.Point            `json:"userLocation,omitempty"`
	Status       []string              `json:"status"`
	Animating    bool                  `json:"animating"`
}

// RosterView is the ambulance list next to the map. Error is set when the
// last sync failed; the entries are then from the last good sync.
type RosterView struct {
	Ambulances []sim.RosterEntry `json:"ambulances"`
	Error      string            `json:"error,omitempty"`
	LastSync   *time.Time        `json:"lastSync,omitempty"`
}

// TrackingService owns the map simulation.
//
// Go Learning Note — One lock around a single-threaded core:
// sim.Context is plain data with no locking of its own. Every path that
// touches it (HTTP handlers, the frame scheduler, the roster syncer and icon
// redraws) goes through mu, so a dispatch, a reconcile or a frame step is
// always applied whole. Network I/O and publishing happen outside mu.
type TrackingService struct {
	logger    zerolog.Logger
	renderer  *render.Renderer
	publisher FramePublisher
	notices   *NotificationService
	frameW    float64
	frameH    float64

	mu    sync.Mutex
	world *sim.Context
	hooks []func(orderID string)

	scheduler *sim.Scheduler
	syncer    *sim.Syncer

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTrackingService wires the simulation together. icons and publisher may
// be nil.
func NewTrackingService(cfg TrackingConfig, source sim.AmbulanceSource, icons *render.IconCache, notices *NotificationService, publisher FramePublisher, logger zerolog.Logger) *TrackingService {
	if cfg.FrameWidth <= 0 {
		cfg.FrameWidth = 900
	}
	if cfg.FrameHeight <= 0 {
		cfg.FrameHeight = 600
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Sync.Rand == nil {
		cfg.Sync.Rand = cfg.Rand
	}
	if notices == nil {
		notices = NewNotificationService(DefaultNoticeLimit, nil, logger)
	}

	s := &TrackingService{
		logger:    logger.With().Str("component", "tracking").Logger(),
		renderer:  render.NewRenderer(icons),
		publisher: publisher,
		notices:   notices,
		frameW:    cfg.FrameWidth,
		frameH:    cfg.FrameHeight,
		world: sim.NewContext(sim.Options{
			Rand:     cfg.Rand,
			Notifier: notices,
			Now:      cfg.Now,
		}),
	}
	s.scheduler = sim.NewScheduler(cfg.FrameInterval, s.tick, cfg.Now)
	s.syncer = sim.NewSyncer(cfg.Sync, source, s.apply, logger)
	if icons != nil {
		icons.OnReady(func(string) { s.Redraw() })
	}
	return s
}

// OnDelivered registers fn to run when the delivery reaches its
// destination. It runs on the scheduler goroutine without the lock held.
func (s *TrackingService) OnDelivered(fn func(orderID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Start begins periodic roster syncs. The first sync runs immediately.
func (s *TrackingService) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.syncer.Run(ctx)
	}()
	s.logger.Info().Msg("map tracking started")
}

// Close stops syncing and the frame loop.
func (s *TrackingService) Close() {
	s.runMu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.runMu.Unlock()
	s.wg.Wait()
	s.scheduler.Close()
}

// Refresh fetches the roster now.
func (s *TrackingService) Refresh(ctx context.Context) error {
	return s.syncer.SyncNow(ctx)
}

// Dispatch sends an ambulance toward target ("lat,lon", or blank for the
// user location). An ambulance missing from the roster triggers one sync
// before giving up.
func (s *TrackingService) Dispatch(ctx context.Context, ambulanceID, target string) (sim.DispatchResult, error) {
	// Resolve first: a bad target must not trigger a sync.
	p, err := s.ResolveTarget(target)
	if err != nil {
		return sim.DispatchResult{}, err
	}

	a, ok := s.syncer.Lookup(ambulanceID)
	if !ok {
		if err := s.syncer.SyncNow(ctx); err != nil {
			return sim.DispatchResult{}, err
		}
		if a, ok = s.syncer.Lookup(ambulanceID); !ok {
			return sim.DispatchResult{}, ErrAmbulanceNotFound
		}
	}

	s.mu.Lock()
	res, err := s.world.Dispatch(a, p)
	frame := s.frameLocked()
	s.mu.Unlock()

	if err != nil {
		return res, err
	}
	s.publish(frame)
	s.scheduler.Wake()
	s.logger.Info().
		Str("ambulance_id", ambulanceID).
		Float64("distance_km", res.Session.TotalKm).
		Int("waypoints", res.Session.WaypointCount).
		Bool("already_active", res.AlreadyActive).
		Msg("dispatch")
	return res, nil
}

// Cancel stops an ambulance's dispatch and reports whether one was active.
func (s *TrackingService) Cancel(ambulanceID string) bool {
	s.mu.Lock()
	ok := s.world.Cancel(ambulanceID)
	frame := s.frameLocked()
	s.mu.Unlock()

	s.publish(frame)
	return ok
}

// SetUserLocation moves the user marker and dispatch default target.
func (s *TrackingService) SetUserLocation(p geo.Point) {
	s.mu.Lock()
	s.world.SetUserLocation(p)
	frame := s.frameLocked()
	s.mu.Unlock()

	s.publish(frame)
}

// ResolveTarget parses a dispatch target the way Dispatch does.
func (s *TrackingService) ResolveTarget(target string) (geo.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.ResolveTarget(target)
}

// IsDispatched reports whether the ambulance is currently moving.
func (s *TrackingService) IsDispatched(ambulanceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.IsActive(ambulanceID)
}

// PlaceDelivery shows a new delivery on the map, replacing any previous one.
// It does not start moving until StartDelivery. It returns the order id of a
// replaced delivery that had not arrived yet.
func (s *TrackingService) PlaceDelivery(plan sim.DeliveryPlan) (displaced string) {
	s.mu.Lock()
	if d, ok := s.world.Delivery(); ok && !d.Arrived && d.OrderID != plan.OrderID {
		displaced = d.OrderID
	}
	s.world.PlaceDelivery(plan)
	frame := s.frameLocked()
	s.mu.Unlock()

	s.publish(frame)
	return displaced
}

// StartDelivery sets the delivery moving and returns its order id.
func (s *TrackingService) StartDelivery() (string, error) {
	s.mu.Lock()
	err := s.world.StartDelivery()
	d, _ := s.world.Delivery()
	s.mu.Unlock()

	if err != nil {
		return d.OrderID, err
	}
	s.scheduler.Wake()
	return d.OrderID, nil
}

// StopDelivery pauses the delivery.
func (s *TrackingService) StopDelivery() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.world.StopDelivery(); err != nil {
		return "", err
	}
	d, _ := s.world.Delivery()
	return d.OrderID, nil
}

// CancelDelivery removes the delivery and its markers and returns the id of
// its order.
func (s *TrackingService) CancelDelivery() (string, error) {
	s.mu.Lock()
	orderID, err := s.world.CancelDelivery()
	frame := s.frameLocked()
	s.mu.Unlock()

	if err != nil {
		return "", err
	}
	s.publish(frame)
	return orderID, nil
}

// Delivery returns the current delivery session.
func (s *TrackingService) Delivery() (sim.DeliverySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Delivery()
}

// State returns a deep copy of the map.
func (s *TrackingService) State() MapState {
	s.mu.Lock()
	defer s.mu.Unlock()

	objs := s.world.Objects()
	st := MapState{
		Objects:    make([]*sim.MapObject, len(objs)),
		Bounds:     s.world.Bounds(),
		Dispatches: s.world.Sessions(),
		Status:     s.world.StatusLines(),
		Animating:  s.world.Active(),
	}
	for i, o := range objs {
		st.Objects[i] = o.Clone()
	}
	if d, ok := s.world.Delivery(); ok {
		st.Delivery = &d
	}
	if p, ok := s.world.UserLocation(); ok {
		st.UserLocation = &p
	}
	return st
}

// Status returns the status overlay lines.
func (s *TrackingService) Status() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.StatusLines()
}

// Roster returns the last synced ambulances with their badges.
func (s *TrackingService) Roster() RosterView {
	fleet := s.syncer.Roster()

	s.mu.Lock()
	entries := s.world.Roster(fleet)
	s.mu.Unlock()

	v := RosterView{Ambulances: entries, Error: s.syncer.LastError()}
	if t, ok := s.syncer.LastSync(); ok {
		v.LastSync = &t
	}
	return v
}

// Lookup finds an ambulance in the last synced roster.
func (s *TrackingService) Lookup(id string) (entities.Ambulance, bool) {
	return s.syncer.Lookup(id)
}

// Notices returns the recent notices, oldest first.
func (s *TrackingService) Notices() []sim.Notice {
	return s.notices.Recent()
}

// Frame renders the map into a display list of the given size. Zero sizes
// use the configured frame size.
func (s *TrackingService) Frame(w, h float64) (*render.DisplayList, error) {
	w, h, err := s.frameSize(w, h)
	if err != nil {
		return nil, err
	}
	dl := render.NewDisplayList(w, h)
	s.mu.Lock()
	s.renderer.Render(dl, s.sceneLocked())
	s.mu.Unlock()
	return dl, nil
}

// SVG renders the map as an SVG document.
func (s *TrackingService) SVG(w, h float64) ([]byte, error) {
	w, h, err := s.frameSize(w, h)
	if err != nil {
		return nil, err
	}
	svg := render.NewSVG(w, h)
	s.mu.Lock()
	s.renderer.Render(svg, s.sceneLocked())
	s.mu.Unlock()
	return svg.Bytes(), nil
}

// GeoJSON exports the map objects and trails.
func (s *TrackingService) GeoJSON() *geojson.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.GeoJSON(s.world.Objects())
}

// Redraw renders and publishes one frame.
func (s *TrackingService) Redraw() {
	s.mu.Lock()
	frame := s.frameLocked()
	s.mu.Unlock()
	s.publish(frame)
}

// Animating reports whether the frame loop is running.
func (s *TrackingService) Animating() bool {
	return s.scheduler.Running()
}

func (s *TrackingService) tick(dt float64) bool {
	s.mu.Lock()
	res := s.world.Step(dt)
	frame := s.frameLocked()
	hooks := append([]func(string){}, s.hooks...)
	s.mu.Unlock()

	s.publish(frame)
	if res.DeliveredOrderID != "" {
		for _, fn := range hooks {
			fn(res.DeliveredOrderID)
		}
	}
	return res.Active
}

func (s *TrackingService) apply(roster []entities.Ambulance) {
	s.mu.Lock()
	s.world.Reconcile(roster)
	frame := s.frameLocked()
	s.mu.Unlock()
	s.publish(frame)
}

func (s *TrackingService) sceneLocked() render.Scene {
	return render.Scene{
		Objects: s.world.Objects(),
		Bounds:  s.world.Bounds(),
		Status:  s.world.StatusLines(),
	}
}

// frameLocked renders the default-size frame for the publisher. It returns
// nil when nobody is listening.
func (s *TrackingService) frameLocked() *render.DisplayList {
	if s.publisher == nil {
		return nil
	}
	dl := render.NewDisplayList(s.frameW, s.frameH)
	s.renderer.Render(dl, s.sceneLocked())
	return dl
}

func (s *TrackingService) publish(frame *render.DisplayList) {
	if frame != nil && s.publisher != nil {
		s.publisher.PublishFrame(frame)
	}
}

func (s *TrackingService) frameSize(w, h float64) (float64, float64, error) {
	if w == 0 {
		w = s.frameW
	}
	if h == 0 {
		h = s.frameH
	}
	if w < 1 || h < 1 || w > maxFrameSize || h > maxFrameSize {
		return 0, 0, ErrInvalidFrameSize
	}
	return w, h, nil
}
