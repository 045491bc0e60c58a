package entities

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of a medicine delivery order.
//
// Go Learning Note — State Machines in Go:
// The map of valid transitions below IS the state machine. The lifecycle is:
//
//	Placed → InTransit → Delivered
//	   ↘         ↘
//	     Cancelled
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:    {OrderStatusInTransit, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusInTransit: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// Order is a medicine order with its simulated delivery route.
type Order struct {
	ID          string        `json:"id"`
	MedicineID  string        `json:"medicineId"`
	Medicine    string        `json:"medicine"`
	Pharmacy    string        `json:"pharmacy"`
	Quantity    int           `json:"quantity"`
	Subtotal    float64       `json:"subtotal"`
	DeliveryFee float64       `json:"deliveryFee"`
	EtaMinutes  float64       `json:"etaMinutes"`
	Total       float64       `json:"total"`
	Address     string        `json:"address"`
	Mobile      string        `json:"mobile"`
	Payment     PaymentMethod `json:"payment"`
	Status      OrderStatus   `json:"status"`
	Shop        Location      `json:"shop"`
	Destination Location      `json:"destination"`
	SpeedKmph   float64       `json:"speedKmph"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	DeliveredAt *time.Time    `json:"deliveredAt,omitempty"`
}

// CanTransitionTo checks if moving to newStatus is allowed.
func (o *Order) CanTransitionTo(newStatus OrderStatus) bool {
	for _, s := range validOrderTransitions[o.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo moves the order to newStatus, stamping DeliveredAt on delivery.
func (o *Order) TransitionTo(newStatus OrderStatus) error {
	if !o.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, newStatus)
	}
	now := time.Now()
	o.Status = newStatus
	o.UpdatedAt = now
	if newStatus == OrderStatusDelivered {
		o.DeliveredAt = &now
	}
	return nil
}

func (o *Order) StartTransit() error { return o.TransitionTo(OrderStatusInTransit) }
func (o *Order) Deliver() error      { return o.TransitionTo(OrderStatusDelivered) }
func (o *Order) Cancel() error       { return o.TransitionTo(OrderStatusCancelled) }

// IsTerminal reports whether no further transitions are possible.
func (o *Order) IsTerminal() bool {
	return len(validOrderTransitions[o.Status]) == 0
}
