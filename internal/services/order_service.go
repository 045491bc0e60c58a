package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/geo"
	"healthease/internal/repository"
	"healthease/internal/sim"
	"healthease/pkg/utils"
)

var (
	ErrOrderNotFound   = errors.New("Order not found")
	ErrAddressRequired = errors.New("Enter delivery address")
)

// Delivery route generation.
const (
	destinationRadiusMeters = 2000.0
	shopMinMeters           = 3000.0
	shopSpreadMeters        = 8000.0
	courierMinKmph          = 25.0
	courierSpreadKmph       = 15.0
)

// Base 20, 5 per km, at least 30, free from a 500 subtotal.
var deliveryFees = utils.NewFeeCalculator(20, 5, 30, 500)

// OrderService places medicine orders and drives their delivery on the map.
//
// Placing an order takes stock, stores the order and puts its pharmacy and
// destination on the map. The courier only moves once tracking starts. The
// order status follows the delivery: tracking moves it to in_transit,
// arrival to delivered, cancelling the delivery to cancelled.
type OrderService struct {
	repo      repository.OrderRepository
	medicines *MedicineService
	tracking  *TrackingService
	center    geo.Point
	logger    zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewOrderService(repo repository.OrderRepository, medicines *MedicineService, tracking *TrackingService, center geo.Point, rng *rand.Rand, logger zerolog.Logger) *OrderService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if center == (geo.Point{}) {
		center = sim.DemoCenter
	}
	s := &OrderService{
		repo:      repo,
		medicines: medicines,
		tracking:  tracking,
		center:    center,
		rng:       rng,
		logger:    logger.With().Str("component", "orders").Logger(),
	}
	tracking.OnDelivered(s.markDelivered)
	return s
}

type PlaceOrderRequest struct {
	MedicineID string           `json:"medicineId"`
	Quantity   int              `json:"qty"`
	Address    string           `json:"address"`
	Mobile     string           `json:"mobile"`
	Payment    entities.Payment `json:"payment"`
}

// PlaceOrder validates the order, takes stock and places the delivery on
// the map. Payment defaults to cash on delivery. An address of the form "lat,lon" is used as the destination;
// anything else gets a random point near the demo center.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*entities.Order, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	mobile := strings.TrimSpace(req.Mobile)
	if !mobilePattern.MatchString(mobile) {
		return nil, ErrInvalidMobile
	}
	if req.Payment.Method == "" {
		req.Payment.Method = entities.PaymentCOD
	}
	if err := req.Payment.Validate(); err != nil {
		return nil, err
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	med, err := s.medicines.Order(ctx, req.MedicineID, qty)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	dest, perr := geo.ParseCoords(address)
	if perr != nil {
		dest = geo.RandomNearby(s.rng, s.center, destinationRadiusMeters)
	}
	shop := geo.RandomNearby(s.rng, dest, shopMinMeters+s.rng.Float64()*shopSpreadMeters)
	speed := courierMinKmph + s.rng.Float64()*courierSpreadKmph
	s.mu.Unlock()

	subtotal := med.Price * float64(qty)
	quote := deliveryFees.Quote(geo.HaversineKm(shop, dest), speed, subtotal)

	now := timeNow()
	order := &entities.Order{
		ID:          utils.GeneratePrefixedID("ord"),
		MedicineID:  med.ID,
		Medicine:    med.Name,
		Pharmacy:    med.PharmacyName(),
		Quantity:    qty,
		Subtotal:    subtotal,
		DeliveryFee: quote.Fee,
		EtaMinutes:  quote.EtaMinutes,
		Total:       subtotal + quote.Fee,
		Address:     address,
		Mobile:      mobile,
		Payment:     req.Payment.Method,
		Status:      entities.OrderStatusPlaced,
		Shop:        entities.LocationFromPoint(shop),
		Destination: entities.LocationFromPoint(dest),
		SpeedKmph:   speed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		if rerr := s.medicines.Restock(ctx, med.ID, qty); rerr != nil {
			s.logger.Error().Err(rerr).Str("medicine_id", med.ID).Int("qty", qty).Msg("restock after failed order")
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	displaced := s.tracking.PlaceDelivery(sim.DeliveryPlan{
		OrderID:     order.ID,
		Medicine:    order.Medicine,
		Pharmacy:    order.Pharmacy,
		Shop:        shop,
		Destination: dest,
		SpeedKmph:   speed,
	})

	// Only one delivery fits on the map; the one it replaced is cancelled.
	if displaced != "" {
		if _, err := s.transition(ctx, displaced, (*entities.Order).Cancel); err != nil {
			s.logger.Error().Err(err).Str("order_id", displaced).Msg("cancel replaced order")
		} else {
			s.logger.Info().Str("order_id", displaced).Str("by", order.ID).Msg("order replaced on the map")
		}
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("medicine_id", order.MedicineID).
		Int("qty", qty).
		Str("payment", string(order.Payment)).
		Float64("route_km", quote.RouteKm).
		Float64("delivery_fee", quote.Fee).
		Msg("order placed")
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*entities.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// Cancel cancels an order. If it is the one on the map its delivery is
// removed too.
func (s *OrderService) Cancel(ctx context.Context, id string) (*entities.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	if d, ok := s.tracking.Delivery(); ok && d.OrderID == id {
		_, _ = s.tracking.CancelDelivery()
	}
	s.logger.Info().Str("order_id", id).Msg("order cancelled")
	return o, nil
}

// TrackDelivery starts the courier of the current order moving. The order
// is marked in transit before the courier starts so a quick arrival cannot
// overtake it.
func (s *OrderService) TrackDelivery(ctx context.Context) (*entities.Order, error) {
	d, ok := s.tracking.Delivery()
	if !ok {
		return nil, sim.ErrNoDelivery
	}
	if d.Running {
		return nil, sim.ErrDeliveryRunning
	}
	if d.Arrived {
		return nil, sim.ErrDeliveryArrived
	}
	order, err := s.transition(ctx, d.OrderID, (*entities.Order).StartTransit)
	if err != nil {
		return nil, err
	}
	if _, err := s.tracking.StartDelivery(); err != nil {
		return nil, err
	}
	return order, nil
}

// StopDelivery pauses the courier. The order stays in transit.
func (s *OrderService) StopDelivery(ctx context.Context) (*entities.Order, error) {
	orderID, err := s.tracking.StopDelivery()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// CancelDelivery removes the current delivery from the map and cancels its
// order.
func (s *OrderService) CancelDelivery(ctx context.Context) (*entities.Order, error) {
	orderID, err := s.tracking.CancelDelivery()
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, orderID, (*entities.Order).Cancel)
}

func (s *OrderService) markDelivered(orderID string) {
	o, err := s.transition(context.Background(), orderID, (*entities.Order).Deliver)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("mark delivered")
		return
	}
	s.logger.Info().Str("order_id", orderID).Str("status", string(o.Status)).Msg("delivery arrived")
}

// transition applies move to the stored order. A move the order cannot make
// (resuming a paused delivery, a late cancel) leaves it as it is.
func (s *OrderService) transition(ctx context.Context, orderID string, move func(*entities.Order) error) (*entities.Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := move(o); err != nil {
		s.logger.Debug().Err(err).Str("order_id", orderID).Msg("order status unchanged")
		return o, nil
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
