package utils

import (
	"math"
)

// DeliveryQuote is the price and expected duration of one courier run.
type DeliveryQuote struct {
	RouteKm     float64 `json:"routeKm"`
	EtaMinutes  float64 `json:"etaMinutes"`
	BaseFee     float64 `json:"baseFee"`
	DistanceFee float64 `json:"distanceFee"`
	Fee         float64 `json:"fee"`
	Waived      bool    `json:"waived"`
}

// FeeCalculator prices medicine deliveries by route length. Orders whose
// subtotal reaches FreeAbove ship free; a zero FreeAbove never waives.
type FeeCalculator struct {
	BaseFee    float64
	PerKmRate  float64
	MinimumFee float64
	FreeAbove  float64
}

func NewFeeCalculator(baseFee, perKmRate, minimumFee, freeAbove float64) *FeeCalculator {
	return &FeeCalculator{
		BaseFee:    baseFee,
		PerKmRate:  perKmRate,
		MinimumFee: minimumFee,
		FreeAbove:  freeAbove,
	}
}

// Quote prices a route of routeKm driven at speedKmph for an order worth
// subtotal.
func (p *FeeCalculator) Quote(routeKm, speedKmph, subtotal float64) DeliveryQuote {
	distanceFee := routeKm * p.PerKmRate
	fee := p.BaseFee + distanceFee
	if fee < p.MinimumFee {
		fee = p.MinimumFee
	}

	waived := p.FreeAbove > 0 && subtotal >= p.FreeAbove
	if waived {
		fee = 0
	}

	return DeliveryQuote{
		RouteKm:     round2(routeKm),
		EtaMinutes:  round2(EstimateDuration(routeKm, speedKmph)),
		BaseFee:     p.BaseFee,
		DistanceFee: round2(distanceFee),
		Fee:         round2(fee),
		Waived:      waived,
	}
}

// EstimateDuration returns minutes to cover distanceKm at speedKmph.
// Non-positive speeds fall back to 30 km/h city traffic.
func EstimateDuration(distanceKm, speedKmph float64) float64 {
	if speedKmph <= 0 {
		speedKmph = 30
	}
	return distanceKm / speedKmph * 60
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
