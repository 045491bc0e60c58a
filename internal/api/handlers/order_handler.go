package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthease/internal/services"
)

// OrderHandler places medicine orders and drives their delivery.
type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Place handles POST /api/orders
func (h *OrderHandler) Place(c *gin.Context) {
	var req services.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	o, err := h.orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// Get handles GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Cancel handles POST /api/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	o, err := h.orders.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// TrackDelivery handles POST /api/map/delivery/track
func (h *OrderHandler) TrackDelivery(c *gin.Context) {
	o, err := h.orders.TrackDelivery(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// StopDelivery handles POST /api/map/delivery/stop
func (h *OrderHandler) StopDelivery(c *gin.Context) {
	o, err := h.orders.StopDelivery(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// CancelDelivery handles POST /api/map/delivery/cancel
func (h *OrderHandler) CancelDelivery(c *gin.Context) {
	o, err := h.orders.CancelDelivery(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
