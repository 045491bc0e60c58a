package sim

import (
	"errors"
	"strings"

	"healthease/internal/geo"
)

var (
	ErrNoDelivery      = errors.New("No active order.")
	ErrDeliveryRunning = errors.New("Already tracking")
	ErrDeliveryArrived = errors.New("Delivery already arrived")
)

// DeliveryPlan describes a delivery to place on the map.
type DeliveryPlan struct {
	OrderID     string
	Medicine    string
	Pharmacy    string
	Shop        geo.Point
	Destination geo.Point
	SpeedKmph   float64
}

// PlaceDelivery replaces any current delivery with plan. The pharmacy and
// destination markers are added right away; the courier itself only appears
// once tracking starts.
func (c *Context) PlaceDelivery(plan DeliveryPlan) {
	if c.delivery != nil {
		c.clearDelivery()
	}
	c.delivery = &DeliverySession{
		OrderID:     plan.OrderID,
		Medicine:    plan.Medicine,
		Pharmacy:    plan.Pharmacy,
		Shop:        plan.Shop,
		Destination: plan.Destination,
		Current:     plan.Shop,
		SpeedMps:    kmphToMps(plan.SpeedKmph),
	}
	c.registry.Put(&MapObject{
		ID:       pharmacyObjectID(plan.OrderID),
		Kind:     KindPharmacy,
		Position: plan.Shop,
		Label:    "Shop",
		Color:    ColorPharmacy,
	})
	c.registry.Put(&MapObject{
		ID:       destinationObjectID(plan.OrderID),
		Kind:     KindDestination,
		Position: plan.Destination,
		Color:    ColorDefault,
	})
	c.boundsDirty = true
}

// StartDelivery sets the delivery running.
func (c *Context) StartDelivery() error {
	switch {
	case c.delivery == nil:
		return ErrNoDelivery
	case c.delivery.Running:
		return ErrDeliveryRunning
	case c.delivery.Arrived:
		return ErrDeliveryArrived
	}
	c.delivery.Running = true
	return nil
}

// StopDelivery pauses the delivery where it is.
func (c *Context) StopDelivery() error {
	if c.delivery == nil {
		return ErrNoDelivery
	}
	c.delivery.Running = false
	return nil
}

// CancelDelivery removes the delivery and its markers and returns the id of
// the order it belonged to.
func (c *Context) CancelDelivery() (string, error) {
	if c.delivery == nil {
		return "", ErrNoDelivery
	}
	orderID := c.delivery.OrderID
	c.clearDelivery()
	return orderID, nil
}

func (c *Context) clearDelivery() {
	c.delivery = nil
	c.registry.RemoveIf(func(o *MapObject) bool {
		return strings.HasPrefix(o.ID, pharmacyPrefix) ||
			strings.HasPrefix(o.ID, destinationPrefix) ||
			strings.HasPrefix(o.ID, deliveryPrefix)
	})
	c.boundsDirty = true
}
