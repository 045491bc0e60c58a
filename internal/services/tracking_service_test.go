package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/geo"
	"healthease/internal/render"
	"healthease/internal/repository"
	"healthease/internal/repository/memory"
	"healthease/internal/sim"
)

// stepClock advances by step on every reading, so each scheduler tick
// simulates step of travel regardless of wall time.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

type frameRecorder struct {
	mu     sync.Mutex
	frames int
	last   *render.DisplayList
}

func (r *frameRecorder) PublishFrame(f *render.DisplayList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	r.last = f
}

func (r *frameRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

type failingSource struct{}

func (failingSource) ListAmbulances(context.Context) ([]entities.Ambulance, error) {
	return nil, errors.New("connection refused")
}

type trackingFixture struct {
	ambulances *AmbulanceService
	medicines  *MedicineService
	tracking   *TrackingService
	orders     *OrderService
	notices    *NotificationService
	frames     *frameRecorder
}

func newTrackingFixture(t *testing.T) *trackingFixture {
	t.Helper()
	store := memory.NewStore()
	locks := memory.NewLockManager()
	t.Cleanup(locks.Stop)

	f := &trackingFixture{frames: &frameRecorder{}}
	f.ambulances = NewAmbulanceService(store.Ambulances, geo.NewSpatialIndex(6), zerolog.Nop())
	f.medicines = NewMedicineService(store.Medicines, locks, zerolog.Nop())
	f.notices = NewNotificationService(10, nil, zerolog.Nop())

	clock := &stepClock{t: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), step: 30 * time.Second}
	f.tracking = NewTrackingService(TrackingConfig{
		FrameInterval: 2 * time.Millisecond,
		FrameWidth:    300,
		FrameHeight:   200,
		Rand:          rand.New(rand.NewSource(1)),
		Now:           clock.Now,
	}, f.ambulances, nil, f.notices, f.frames, zerolog.Nop())
	t.Cleanup(f.tracking.Close)

	f.orders = NewOrderService(store.Orders, f.medicines, f.tracking, sim.DemoCenter, rand.New(rand.NewSource(2)), zerolog.Nop())
	return f
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func noticeTexts(ns []sim.Notice) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Text
	}
	return out
}

func TestTrackingService_DispatchRunsToArrival(t *testing.T) {
	f := newTrackingFixture(t)
	ctx := context.Background()

	a, err := f.ambulances.Create(ctx, CreateAmbulanceRequest{Name: "Ambulance A", Lat: floatPtr(12.9716), Lon: floatPtr(77.5946)})
	if err != nil {
		t.Fatal(err)
	}

	// Not synced yet: Dispatch syncs once to find it.
	res, err := f.tracking.Dispatch(ctx, a.ID, "12.9740,77.6100")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res.AlreadyActive {
		t.Error("first dispatch reported AlreadyActive")
	}
	if res.Session.WaypointCount != 20 {
		t.Errorf("expected 20 waypoints, got %d", res.Session.WaypointCount)
	}
	if res.Session.TotalKm < 1.68 || res.Session.TotalKm > 1.70 {
		t.Errorf("expected ~1.69 km, got %.4f", res.Session.TotalKm)
	}

	waitUntil(t, "arrival", func() bool {
		return !f.tracking.Animating() && len(f.tracking.State().Dispatches) == 0
	})

	st := f.tracking.State()
	var obj *sim.MapObject
	for _, o := range st.Objects {
		if o.ID == sim.AmbulanceObjectID(a.ID) {
			obj = o
		}
	}
	if obj == nil {
		t.Fatal("ambulance object missing after arrival")
	}
	target := geo.Point{Lat: 12.9740, Lng: 77.6100}
	if obj.Position != target {
		t.Errorf("expected exact snap to %v, got %v", target, obj.Position)
	}

	texts := strings.Join(noticeTexts(f.tracking.Notices()), "\n")
	for _, want := range []string{"Ambulance A dispatched — 1.69 km", "Ambulance A arrived — 1.69 km"} {
		if !strings.Contains(texts, want) {
			t.Errorf("missing notice %q in:\n%s", want, texts)
		}
	}
	if f.frames.count() < 2 {
		t.Errorf("expected frames to be published, got %d", f.frames.count())
	}
	if len(f.tracking.Status()) != 0 {
		t.Errorf("expected no status lines when idle, got %v", f.tracking.Status())
	}
}

func TestTrackingService_DispatchErrors(t *testing.T) {
	f := newTrackingFixture(t)
	ctx := context.Background()

	busy, _ := f.ambulances.Create(ctx, CreateAmbulanceRequest{Name: "Busy One", Status: "Busy", Lat: floatPtr(12.97), Lon: floatPtr(77.59)})
	free, _ := f.ambulances.Create(ctx, CreateAmbulanceRequest{Name: "Free One", Lat: floatPtr(12.98), Lon: floatPtr(77.60)})
	if err := f.tracking.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if _, err := f.tracking.Dispatch(ctx, "missing", "12.97,77.59"); !errors.Is(err, ErrAmbulanceNotFound) {
		t.Errorf("expected ErrAmbulanceNotFound, got %v", err)
	}
	if _, err := f.tracking.Dispatch(ctx, free.ID, "somewhere"); !errors.Is(err, geo.ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
	if _, err := f.tracking.Dispatch(ctx, free.ID, ""); !errors.Is(err, sim.ErrNoTarget) {
		t.Errorf("expected ErrNoTarget without a user location, got %v", err)
	}
	_, err := f.tracking.Dispatch(ctx, busy.ID, "12.97,77.60")
	if !errors.Is(err, sim.ErrAmbulanceBusy) {
		t.Errorf("expected ErrAmbulanceBusy, got %v", err)
	} else if err.Error() != "Busy One is marked Busy and cannot be dispatched." {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(f.tracking.State().Dispatches) != 0 {
		t.Error("failed dispatches must not create sessions")
	}

	// With a user location, a blank target goes there.
	user := geo.Point{Lat: 13.3, Lng: 77.8}
	f.tracking.SetUserLocation(user)
	res, err := f.tracking.Dispatch(ctx, free.ID, "")
	if err != nil {
		t.Fatalf("Dispatch to user location failed: %v", err)
	}
	if res.Session.Target != user {
		t.Errorf("expected target %v, got %v", user, res.Session.Target)
	}

	if !f.tracking.Cancel(free.ID) {
		t.Error("expected Cancel to report an active dispatch")
	}
	if f.tracking.Cancel(free.ID) {
		t.Error("expected second Cancel to report false")
	}
	latest, _ := f.notices.Latest()
	if latest.Text != "No active dispatch for this ambulance" || !latest.Transient {
		t.Errorf("unexpected latest notice %+v", latest)
	}
}

func TestTrackingService_BadTargetDoesNotSync(t *testing.T) {
	f := newTrackingFixture(t)
	ctx := context.Background()
	a, _ := f.ambulances.Create(ctx, CreateAmbulanceRequest{Name: "Unsynced", Lat: floatPtr(12.97), Lon: floatPtr(77.59)})

	// a is not on the map yet, so a valid target would trigger a sync.
	if _, err := f.tracking.Dispatch(ctx, a.ID, "near the station"); !errors.Is(err, geo.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
	if n := len(f.tracking.State().Objects); n != 0 {
		t.Errorf("a rejected target must leave the map alone, got %d objects", n)
	}
	if f.tracking.Roster().LastSync != nil {
		t.Error("a rejected target must not sync the roster")
	}
}

func TestTrackingService_RosterAndSyncFailure(t *testing.T) {
	f := newTrackingFixture(t)
	ctx := context.Background()
	_, _ = f.ambulances.Create(ctx, CreateAmbulanceRequest{Name: "A", Status: "En route", Lat: floatPtr(12.97), Lon: floatPtr(77.59)})
	if err := f.tracking.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	roster := f.tracking.Roster()
	if roster.Error != "" || roster.LastSync == nil {
		t.Errorf("expected a clean sync, got %+v", roster)
	}
	if len(roster.Ambulances) != 1 || roster.Ambulances[0].Badge != sim.BadgeEnRoute {
		t.Errorf("unexpected roster %+v", roster.Ambulances)
	}

	broken := NewTrackingService(TrackingConfig{}, failingSource{}, nil, nil, nil, zerolog.Nop())
	defer broken.Close()
	err := broken.Refresh(ctx)
	if !errors.Is(err, sim.ErrLoadFailed) {
		t.Fatalf("expected ErrLoadFailed, got %v", err)
	}
	if got := broken.Roster().Error; got != "failed to load ambulances" {
		t.Errorf("expected roster error, got %q", got)
	}
	if len(broken.State().Objects) != 0 {
		t.Error("a failed sync must not touch the map")
	}
}

func TestTrackingService_FramesAndExports(t *testing.T) {
	f := newTrackingFixture(t)
	f.tracking.SetUserLocation(geo.Point{Lat: 12.9716, Lng: 77.5946})

	dl, err := f.tracking.Frame(0, 0)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if dl.Width != 300 || dl.Height != 200 || len(dl.Ops) == 0 {
		t.Errorf("unexpected frame %vx%v with %d ops", dl.Width, dl.Height, len(dl.Ops))
	}
	if _, err := f.tracking.Frame(5000, 10); !errors.Is(err, ErrInvalidFrameSize) {
		t.Errorf("expected ErrInvalidFrameSize, got %v", err)
	}

	svg, err := f.tracking.SVG(120, 80)
	if err != nil {
		t.Fatalf("SVG failed: %v", err)
	}
	if !strings.HasPrefix(string(svg), "<svg") || !strings.Contains(string(svg), ">You</text>") {
		t.Errorf("unexpected svg: %s", svg)
	}

	fc := f.tracking.GeoJSON()
	if len(fc.Features) != 1 || fc.Features[0].Properties["kind"] != "user" {
		t.Errorf("unexpected features %+v", fc.Features)
	}
}

func seedMedicine(t *testing.T, f *trackingFixture, stock int) *entities.Medicine {
	t.Helper()
	m, err := f.medicines.Create(context.Background(), CreateMedicineRequest{Name: "Paracetamol", Pharmacy: "Apollo", Price: 25, Stock: stock})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestOrderService_PlaceOrderValidation(t *testing.T) {
	f := newTrackingFixture(t)
	m := seedMedicine(t, f, 2)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     PlaceOrderRequest
		wantErr error
	}{
		{"no address", PlaceOrderRequest{MedicineID: m.ID, Mobile: "9876543210"}, ErrAddressRequired},
		{"bad mobile", PlaceOrderRequest{MedicineID: m.ID, Address: "MG Road", Mobile: "98765"}, ErrInvalidMobile},
		{"bad upi", PlaceOrderRequest{MedicineID: m.ID, Address: "MG Road", Mobile: "9876543210", Payment: entities.Payment{Method: entities.PaymentUPI, UPI: "nobody"}}, entities.ErrInvalidUPI},
		{"bad card", PlaceOrderRequest{MedicineID: m.ID, Address: "MG Road", Mobile: "9876543210", Payment: entities.Payment{Method: entities.PaymentCard, CardNumber: "1234"}}, entities.ErrInvalidCard},
		{"unknown payment", PlaceOrderRequest{MedicineID: m.ID, Address: "MG Road", Mobile: "9876543210", Payment: entities.Payment{Method: "cheque"}}, entities.ErrUnknownPayment},
		{"too many", PlaceOrderRequest{MedicineID: m.ID, Quantity: 3, Address: "MG Road", Mobile: "9876543210"}, ErrInsufficientStock},
		{"unknown medicine", PlaceOrderRequest{MedicineID: "nope", Address: "MG Road", Mobile: "9876543210"}, ErrMedicineNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.orders.PlaceOrder(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	stored, _ := f.medicines.Get(ctx, m.ID)
	if stored.Stock != 2 {
		t.Errorf("rejected orders must not take stock, got %d", stored.Stock)
	}
	if _, ok := f.tracking.Delivery(); ok {
		t.Error("rejected orders must not place a delivery")
	}
}

func TestOrderService_DeliveryLifecycle(t *testing.T) {
	f := newTrackingFixture(t)
	m := seedMedicine(t, f, 5)
	ctx := context.Background()

	order, err := f.orders.PlaceOrder(ctx, PlaceOrderRequest{
		MedicineID: m.ID,
		Quantity:   2,
		Address:    "12.9740,77.6100",
		Mobile:     "9876543210",
		Payment:    entities.Payment{Method: entities.PaymentUPI, UPI: "asha@okbank"},
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if order.Status != entities.OrderStatusPlaced || order.Subtotal != 50 || order.Pharmacy != "Apollo" {
		t.Errorf("unexpected order %+v", order)
	}
	if order.DeliveryFee < 30 || order.Total != order.Subtotal+order.DeliveryFee || order.EtaMinutes <= 0 {
		t.Errorf("unexpected delivery pricing fee=%v total=%v eta=%v", order.DeliveryFee, order.Total, order.EtaMinutes)
	}
	dest := geo.Point{Lat: 12.9740, Lng: 77.6100}
	if order.Destination.Point() != dest {
		t.Errorf("expected destination from address, got %+v", order.Destination)
	}
	shopKm := geo.HaversineKm(order.Shop.Point(), dest)
	if shopKm > 11.01 {
		t.Errorf("shop %.2f km from destination, want within 11 km", shopKm)
	}
	if order.SpeedKmph < 25 || order.SpeedKmph > 40 {
		t.Errorf("courier speed %.1f outside 25–40", order.SpeedKmph)
	}
	if stored, _ := f.medicines.Get(ctx, m.ID); stored.Stock != 3 {
		t.Errorf("expected stock 3, got %d", stored.Stock)
	}

	d, ok := f.tracking.Delivery()
	if !ok || d.OrderID != order.ID || d.Running {
		t.Fatalf("expected a placed, idle delivery, got %+v", d)
	}

	tracked, err := f.orders.TrackDelivery(ctx)
	if err != nil {
		t.Fatalf("TrackDelivery failed: %v", err)
	}
	if tracked.Status != entities.OrderStatusInTransit {
		t.Errorf("expected in_transit, got %s", tracked.Status)
	}

	waitUntil(t, "delivery", func() bool {
		o, err := f.orders.Get(ctx, order.ID)
		return err == nil && o.Status == entities.OrderStatusDelivered
	})

	delivered, _ := f.orders.Get(ctx, order.ID)
	if delivered.DeliveredAt == nil {
		t.Error("expected DeliveredAt to be set")
	}
	d, _ = f.tracking.Delivery()
	if !d.Arrived || d.Current != dest {
		t.Errorf("expected courier at destination, got %+v", d)
	}
	if _, err := f.orders.TrackDelivery(ctx); !errors.Is(err, sim.ErrDeliveryArrived) {
		t.Errorf("expected ErrDeliveryArrived, got %v", err)
	}
	texts := strings.Join(noticeTexts(f.tracking.Notices()), "\n")
	if !strings.Contains(texts, "Delivery arrived!") {
		t.Errorf("missing arrival notice in:\n%s", texts)
	}
}

func TestOrderService_CancelRemovesDelivery(t *testing.T) {
	f := newTrackingFixture(t)
	m := seedMedicine(t, f, 5)
	ctx := context.Background()

	if _, err := f.orders.StopDelivery(ctx); !errors.Is(err, sim.ErrNoDelivery) {
		t.Errorf("expected ErrNoDelivery, got %v", err)
	}

	first, err := f.orders.PlaceOrder(ctx, PlaceOrderRequest{MedicineID: m.ID, Address: "MG Road, Bengaluru", Mobile: "9876543210"})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if first.Payment != entities.PaymentCOD {
		t.Errorf("expected payment to default to cod, got %q", first.Payment)
	}
	if km := geo.HaversineKm(first.Destination.Point(), sim.DemoCenter); km > 2.01 {
		t.Errorf("random destination %.2f km from center, want within 2 km", km)
	}

	cancelled, err := f.orders.CancelDelivery(ctx)
	if err != nil {
		t.Fatalf("CancelDelivery failed: %v", err)
	}
	if cancelled.ID != first.ID || cancelled.Status != entities.OrderStatusCancelled {
		t.Errorf("unexpected cancelled order %+v", cancelled)
	}
	for _, o := range f.tracking.State().Objects {
		if o.Kind == sim.KindPharmacy || o.Kind == sim.KindDestination || o.Kind == sim.KindDelivery {
			t.Errorf("delivery marker %s left on the map", o.ID)
		}
	}
	if _, err := f.orders.CancelDelivery(ctx); !errors.Is(err, sim.ErrNoDelivery) {
		t.Errorf("expected ErrNoDelivery, got %v", err)
	}

	second, _ := f.orders.PlaceOrder(ctx, PlaceOrderRequest{MedicineID: m.ID, Address: "12.98,77.60", Mobile: "9876543210"})
	if _, err := f.orders.Cancel(ctx, second.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, ok := f.tracking.Delivery(); ok {
		t.Error("cancelling the tracked order should remove its delivery")
	}
	if _, err := f.orders.Cancel(ctx, second.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := f.orders.Get(ctx, "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderService_NewOrderCancelsReplacedOrder(t *testing.T) {
	f := newTrackingFixture(t)
	m := seedMedicine(t, f, 5)
	ctx := context.Background()
	req := PlaceOrderRequest{MedicineID: m.ID, Address: "12.98,77.60", Mobile: "9876543210"}

	first, err := f.orders.PlaceOrder(ctx, req)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	second, err := f.orders.PlaceOrder(ctx, req)
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if d, _ := f.tracking.Delivery(); d.OrderID != second.ID {
		t.Fatalf("expected the map to show %s, got %s", second.ID, d.OrderID)
	}
	if o, _ := f.orders.Get(ctx, first.ID); o.Status != entities.OrderStatusCancelled {
		t.Errorf("replaced order should be cancelled, got %s", o.Status)
	}

	// A delivered order stays delivered when the next one takes the map.
	if _, err := f.orders.TrackDelivery(ctx); err != nil {
		t.Fatalf("TrackDelivery failed: %v", err)
	}
	waitUntil(t, "delivery", func() bool {
		o, err := f.orders.Get(ctx, second.ID)
		return err == nil && o.Status == entities.OrderStatusDelivered
	})
	if _, err := f.orders.PlaceOrder(ctx, req); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if o, _ := f.orders.Get(ctx, second.ID); o.Status != entities.OrderStatusDelivered {
		t.Errorf("delivered order changed to %s", o.Status)
	}
}

type brokenOrderRepo struct {
	repository.OrderRepository
}

func (brokenOrderRepo) Create(context.Context, *entities.Order) error {
	return errors.New("disk full")
}

func TestOrderService_FailedCreateReturnsStock(t *testing.T) {
	f := newTrackingFixture(t)
	m := seedMedicine(t, f, 5)
	ctx := context.Background()

	orders := NewOrderService(brokenOrderRepo{memory.NewStore().Orders}, f.medicines, f.tracking, sim.DemoCenter, rand.New(rand.NewSource(3)), zerolog.Nop())
	if _, err := orders.PlaceOrder(ctx, PlaceOrderRequest{MedicineID: m.ID, Quantity: 2, Address: "12.98,77.60", Mobile: "9876543210"}); err == nil {
		t.Fatal("expected PlaceOrder to fail")
	}
	if stored, _ := f.medicines.Get(ctx, m.ID); stored.Stock != 5 {
		t.Errorf("expected stock back at 5, got %d", stored.Stock)
	}
	if _, ok := f.tracking.Delivery(); ok {
		t.Error("a failed order must not place a delivery")
	}
}

func TestNotificationService_KeepsLatest(t *testing.T) {
	var published []string
	pub := noticeFunc(func(n sim.Notice) { published = append(published, n.Text) })
	svc := NewNotificationService(3, pub, zerolog.Nop())

	for _, text := range []string{"a", "b", "c", "d", "e"} {
		svc.Notify(sim.Notice{Text: text})
	}

	got := noticeTexts(svc.Recent())
	if strings.Join(got, ",") != "c,d,e" {
		t.Errorf("expected last three notices, got %v", got)
	}
	if len(published) != 5 {
		t.Errorf("expected every notice published, got %d", len(published))
	}
	if latest, ok := svc.Latest(); !ok || latest.Text != "e" {
		t.Errorf("unexpected latest %+v", latest)
	}
}

type noticeFunc func(sim.Notice)

func (f noticeFunc) PublishNotice(n sim.Notice) { f(n) }
