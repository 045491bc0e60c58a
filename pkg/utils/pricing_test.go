package utils

import (
	"math"
	"strings"
	"testing"
)

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		name       string
		distanceKm float64
		speedKmph  float64
		want       float64
	}{
		{"courier 6km at 30", 6, 30, 12},
		{"courier 10km at 40", 10, 40, 15},
		{"unknown speed", 5, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateDuration(tt.distanceKm, tt.speedKmph); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EstimateDuration(%v, %v) = %v, want %v", tt.distanceKm, tt.speedKmph, got, tt.want)
			}
		})
	}
}

func TestFeeCalculator_Quote(t *testing.T) {
	calc := NewFeeCalculator(20, 5, 30, 500)

	tests := []struct {
		name     string
		routeKm  float64
		subtotal float64
		wantFee  float64
		waived   bool
	}{
		{"short route hits minimum", 1, 10, 30, false},
		{"distance priced", 6, 10, 50, false},
		{"large order ships free", 6, 500, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := calc.Quote(tt.routeKm, 30, tt.subtotal)
			if q.Fee != tt.wantFee || q.Waived != tt.waived {
				t.Errorf("Quote() fee = %v waived = %v, want %v %v", q.Fee, q.Waived, tt.wantFee, tt.waived)
			}
		})
	}
}

func TestDeliveryQuote_Fields(t *testing.T) {
	calc := NewFeeCalculator(20, 5, 30, 0)
	q := calc.Quote(7.456, 40, 1000)

	if q.RouteKm != 7.46 {
		t.Errorf("Expected RouteKm 7.46, got %v", q.RouteKm)
	}
	if q.EtaMinutes != 11.18 {
		t.Errorf("Expected EtaMinutes 11.18, got %v", q.EtaMinutes)
	}
	if q.DistanceFee != 37.28 || q.Fee != 57.28 {
		t.Errorf("Expected fees 37.28/57.28, got %v/%v", q.DistanceFee, q.Fee)
	}
	if q.Waived {
		t.Error("a zero threshold must never waive the fee")
	}
}

func TestGeneratePrefixedID(t *testing.T) {
	id := GeneratePrefixedID("ord")
	if !strings.HasPrefix(id, "ord_") || len(id) != len("ord_")+12 {
		t.Errorf("unexpected id %q", id)
	}
	if GenerateID() == GenerateID() {
		t.Error("GenerateID returned the same id twice")
	}
}

func BenchmarkQuote(b *testing.B) {
	calc := NewFeeCalculator(20, 5, 30, 500)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		calc.Quote(7.5, 32, 120)
	}
}
