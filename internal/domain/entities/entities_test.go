package entities

import (
	"errors"
	"testing"
	"time"
)

func TestOrder_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		wantErr bool
	}{
		{"placed to in transit", OrderStatusPlaced, OrderStatusInTransit, false},
		{"in transit to delivered", OrderStatusInTransit, OrderStatusDelivered, false},
		{"placed to cancelled", OrderStatusPlaced, OrderStatusCancelled, false},
		{"in transit to cancelled", OrderStatusInTransit, OrderStatusCancelled, false},
		{"delivered to cancelled", OrderStatusDelivered, OrderStatusCancelled, true},
		{"cancelled to in transit", OrderStatusCancelled, OrderStatusInTransit, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from}
			err := o.TransitionTo(tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("TransitionTo() error = %v, want ErrInvalidTransition", err)
				}
				if o.Status != tt.from {
					t.Errorf("status changed to %s on failed transition", o.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("TransitionTo() unexpected error: %v", err)
			}
			if o.Status != tt.to {
				t.Errorf("status = %s, want %s", o.Status, tt.to)
			}
		})
	}
}

func TestOrder_DeliverStampsTime(t *testing.T) {
	o := &Order{Status: OrderStatusInTransit}
	if err := o.Deliver(); err != nil {
		t.Fatal(err)
	}
	if o.DeliveredAt == nil {
		t.Error("DeliveredAt not set")
	}
	if !o.IsTerminal() {
		t.Error("delivered order should be terminal")
	}
}

func TestPayment_Validate(t *testing.T) {
	tests := []struct {
		name string
		p    Payment
		want error
	}{
		{"cod", Payment{Method: PaymentCOD}, nil},
		{"upi ok", Payment{Method: PaymentUPI, UPI: "ravi.k@okaxis"}, nil},
		{"upi missing bank", Payment{Method: PaymentUPI, UPI: "ravi@"}, ErrInvalidUPI},
		{"card ok", Payment{Method: PaymentCard, CardNumber: "4111 1111 1111 1111", Expiry: "09/27", CVV: "123"}, nil},
		{"card short", Payment{Method: PaymentCard, CardNumber: "41111", Expiry: "09/27", CVV: "123"}, ErrInvalidCard},
		{"card bad expiry", Payment{Method: PaymentCard, CardNumber: "4111111111111111", Expiry: "13/27", CVV: "123"}, ErrInvalidExpiry},
		{"card bad cvv", Payment{Method: PaymentCard, CardNumber: "4111111111111111", Expiry: "0927", CVV: "12"}, ErrInvalidCVV},
		{"unknown", Payment{Method: "cheque"}, ErrUnknownPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAmbulance_StatusPatterns(t *testing.T) {
	tests := []struct {
		status      string
		demo        bool
		busy        bool
		enRoute     bool
		canDispatch bool
	}{
		{"Available", false, false, false, true},
		{"Busy", false, true, false, false},
		{"unavailable", false, true, false, false},
		{"Occupied", false, true, false, false},
		{"Busy", true, true, false, true},
		{"En-route", false, false, true, true},
		{"Dispatched", false, false, true, true},
		{"pending", false, false, true, true},
	}

	for _, tt := range tests {
		a := &Ambulance{Status: tt.status, Demo: tt.demo}
		if got := a.IsBusy(); got != tt.busy {
			t.Errorf("%q IsBusy() = %v, want %v", tt.status, got, tt.busy)
		}
		if got := a.IsEnRoute(); got != tt.enRoute {
			t.Errorf("%q IsEnRoute() = %v, want %v", tt.status, got, tt.enRoute)
		}
		if got := a.CanDispatch(); got != tt.canDispatch {
			t.Errorf("%q demo=%v CanDispatch() = %v, want %v", tt.status, tt.demo, got, tt.canDispatch)
		}
	}
}

func TestNewAmbulance_Defaults(t *testing.T) {
	a := NewAmbulance("1", "Ambulance A", "", 0, nil)
	if a.Status != AmbulanceStatusAvailable {
		t.Errorf("Status = %q", a.Status)
	}
	if a.SpeedKmph != DefaultAmbulanceSpeedKmph {
		t.Errorf("SpeedKmph = %v", a.SpeedKmph)
	}
	if got := (&Ambulance{ID: "x9"}).DisplayName(); got != "Amb-x9" {
		t.Errorf("DisplayName() = %q", got)
	}
}

func TestMedicine_PharmacyNameAndTake(t *testing.T) {
	if got := (&Medicine{Pharmacy: "City Pharmacy", Shop: "Corner"}).PharmacyName(); got != "City Pharmacy" {
		t.Errorf("PharmacyName() = %q", got)
	}
	if got := (&Medicine{Shop: "Corner"}).PharmacyName(); got != "Corner" {
		t.Errorf("PharmacyName() = %q", got)
	}
	if got := (&Medicine{}).PharmacyName(); got != "Pharmacy" {
		t.Errorf("PharmacyName() = %q", got)
	}

	m := &Medicine{Stock: 2}
	if err := m.Take(3); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("Take(3) = %v", err)
	}
	if err := m.Take(2); err != nil || m.Stock != 0 {
		t.Errorf("Take(2) = %v, stock %d", err, m.Stock)
	}
}

func TestDoctor_OnLeaveOn(t *testing.T) {
	until := time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)
	d := NewDoctor("d1", "Dr. Jane", "Dermatologist", false, nil, &until)

	if !d.OnLeaveOn(time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected leave on the last leave day")
	}
	if d.OnLeaveOn(time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected no leave the day after")
	}
	if d.Specialization != "Dermatologist" || len(d.AvailabilityTimes) != 0 {
		t.Errorf("unexpected doctor %+v", d)
	}
}

func TestAppointment_Cancel(t *testing.T) {
	a := NewAppointment("a1", "Ravi Kumar", "", "", time.Now(), "d1")
	if a.Disease != DefaultDisease {
		t.Errorf("Disease = %q", a.Disease)
	}
	if err := a.Cancel(); err != nil {
		t.Fatal(err)
	}
	if err := a.Cancel(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Cancel() = %v", err)
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2026-10-30", "2026-10-30T09:30", "2026-10-30T09:30:00Z"} {
		d, err := ParseDate(s)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", s, err)
			continue
		}
		if d.Year() != 2026 || d.Month() != time.October || d.Day() != 30 {
			t.Errorf("ParseDate(%q) = %v", s, d)
		}
	}
	if _, err := ParseDate("30/10/2026"); err == nil {
		t.Error("expected error for dd/mm/yyyy")
	}
}
