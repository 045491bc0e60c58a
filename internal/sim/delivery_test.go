package sim

import (
	"errors"
	"testing"

	"healthease/internal/domain/entities"
	"healthease/internal/geo"
)

func testPlan() DeliveryPlan {
	return DeliveryPlan{
		OrderID:     "o1",
		Medicine:    "Paracetamol",
		Pharmacy:    "City Pharmacy",
		Shop:        geo.Point{Lat: 12.9716, Lng: 77.5946},
		Destination: geo.Point{Lat: 12.9740, Lng: 77.6100},
		SpeedKmph:   30,
	}
}

func TestDelivery_Lifecycle(t *testing.T) {
	c, log := newTestContext()

	if err := c.StartDelivery(); !errors.Is(err, ErrNoDelivery) {
		t.Fatalf("StartDelivery() without order = %v", err)
	}

	plan := testPlan()
	c.PlaceDelivery(plan)
	shop, ok := c.Object("shop_o1")
	if !ok || shop.Label != "Shop" || shop.Color != ColorPharmacy {
		t.Errorf("shop marker = %+v", shop)
	}
	if _, ok := c.Object("dest_o1"); !ok {
		t.Error("destination marker missing")
	}
	if _, ok := c.Object("del_o1"); ok {
		t.Error("courier drawn before tracking starts")
	}
	if c.Active() {
		t.Error("placed delivery should not be active")
	}

	if err := c.StartDelivery(); err != nil {
		t.Fatal(err)
	}
	if err := c.StartDelivery(); !errors.Is(err, ErrDeliveryRunning) {
		t.Errorf("second StartDelivery() = %v", err)
	}

	c.Step(10)
	d, _ := c.Delivery()
	if d.RemainingKm() >= geo.HaversineKm(plan.Shop, plan.Destination) {
		t.Error("delivery did not move")
	}
	if _, ok := c.Object("del_o1"); !ok {
		t.Error("courier not drawn once running")
	}

	if err := c.StopDelivery(); err != nil {
		t.Fatal(err)
	}
	paused, _ := c.Delivery()
	c.Step(10)
	if still, _ := c.Delivery(); still.Current != paused.Current {
		t.Error("stopped delivery kept moving")
	}

	_ = c.StartDelivery()
	var delivered string
	for i := 0; i < 1000 && delivered == ""; i++ {
		delivered = c.Step(1).DeliveredOrderID
	}
	if delivered != "o1" {
		t.Fatalf("DeliveredOrderID = %q", delivered)
	}
	courier, _ := c.Object("del_o1")
	if courier.Position != plan.Destination {
		t.Errorf("courier at %+v, want destination", courier.Position)
	}
	if n := log.last(); n.Text != "Delivery arrived!" || !n.Transient {
		t.Errorf("notice = %+v", n)
	}
	if err := c.StartDelivery(); !errors.Is(err, ErrDeliveryArrived) {
		t.Errorf("StartDelivery() after arrival = %v", err)
	}
	if c.Active() {
		t.Error("arrived delivery still active")
	}
}

func TestDelivery_CancelAndReplace(t *testing.T) {
	c, _ := newTestContext()
	c.PlaceDelivery(testPlan())
	_ = c.StartDelivery()
	c.Step(1)

	next := testPlan()
	next.OrderID = "o2"
	c.PlaceDelivery(next)
	for _, id := range []string{"shop_o1", "dest_o1", "del_o1"} {
		if _, ok := c.Object(id); ok {
			t.Errorf("%s left behind after replacing the delivery", id)
		}
	}

	orderID, err := c.CancelDelivery()
	if err != nil || orderID != "o2" {
		t.Fatalf("CancelDelivery() = %q, %v", orderID, err)
	}
	if len(c.Objects()) != 0 {
		t.Errorf("objects left: %d", len(c.Objects()))
	}
	if _, err := c.CancelDelivery(); !errors.Is(err, ErrNoDelivery) {
		t.Errorf("second CancelDelivery() = %v", err)
	}
}

func TestStatusLines(t *testing.T) {
	c, _ := newTestContext()
	_, _ = c.Dispatch(ambulance("a", "Ambulance A", "Available", 40, 12.9719, 77.5946), geo.Point{Lat: 12.9667, Lng: 77.5995})
	c.PlaceDelivery(testPlan())
	_ = c.StartDelivery()

	lines := c.StatusLines()
	want := []string{
		"Ambulance A — Covered: 0.00 / 0.79 km",
		"Delivery (Paracetamol) — Remaining: 1.69 km",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRosterBadges(t *testing.T) {
	c, _ := newTestContext()
	tracked := ambulance("t", "T", "Available", 40, 12.97, 77.59)
	_, _ = c.Dispatch(tracked, geo.Point{Lat: 12.96, Lng: 77.60})

	fleet := []entities.Ambulance{
		tracked,
		{ID: "b", Status: "Occupied"},
		{ID: "e", Status: "en route"},
		{ID: "v", Status: "Available"},
		{ID: "d", Status: "Busy", Demo: true},
	}
	tests := []struct {
		badge       string
		canDispatch bool
	}{
		{BadgeTracking, false},
		{BadgeBusy, false},
		{BadgeEnRoute, true},
		{BadgeAvailable, true},
		{BadgeBusy, true},
	}

	roster := c.Roster(fleet)
	for i, tt := range tests {
		e := roster[i]
		if e.Badge != tt.badge || e.CanDispatch != tt.canDispatch {
			t.Errorf("%s: badge %q canDispatch %v, want %q %v", e.Ambulance.ID, e.Badge, e.CanDispatch, tt.badge, tt.canDispatch)
		}
	}
	if roster[0].RemainingKm == nil || roster[1].RemainingKm != nil {
		t.Error("progress should only be reported for tracked ambulances")
	}
}
