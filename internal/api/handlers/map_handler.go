package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"healthease/internal/geo"
	"healthease/internal/services"
	"healthease/internal/stream"
)

// MapHandler exposes the live map: snapshots, rendered frames, dispatch
// controls and the WebSocket stream.
type MapHandler struct {
	tracking *services.TrackingService
	matching *services.MatchingService
	hub      *stream.Hub
	logger   zerolog.Logger
}

func NewMapHandler(tracking *services.TrackingService, matching *services.MatchingService, hub *stream.Hub, logger zerolog.Logger) *MapHandler {
	return &MapHandler{
		tracking: tracking,
		matching: matching,
		hub:      hub,
		logger:   logger.With().Str("component", "map_handler").Logger(),
	}
}

// State handles GET /api/map/state
func (h *MapHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracking.State())
}

// Status handles GET /api/map/status
func (h *MapHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lines": h.tracking.Status(), "animating": h.tracking.Animating()})
}

// Roster handles GET /api/map/roster
func (h *MapHandler) Roster(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracking.Roster())
}

// Notices handles GET /api/map/notices
func (h *MapHandler) Notices(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracking.Notices())
}

// GeoJSON handles GET /api/map/geojson
func (h *MapHandler) GeoJSON(c *gin.Context) {
	data, err := h.tracking.GeoJSON().MarshalJSON()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}

// Frame handles GET /api/map/frame?w=&h=
func (h *MapHandler) Frame(c *gin.Context) {
	w, hgt, ok := frameQuery(c)
	if !ok {
		return
	}
	dl, err := h.tracking.Frame(w, hgt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dl)
}

// FrameSVG handles GET /api/map/frame.svg?w=&h=
func (h *MapHandler) FrameSVG(c *gin.Context) {
	w, hgt, ok := frameQuery(c)
	if !ok {
		return
	}
	svg, err := h.tracking.SVG(w, hgt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

// frameQuery reads the optional w and h parameters. Missing means 0, which
// the tracking service replaces with the configured size.
func frameQuery(c *gin.Context) (float64, float64, bool) {
	var size [2]float64
	for i, key := range []string{"w", "h"} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, services.ErrInvalidFrameSize)
			return 0, 0, false
		}
		size[i] = v
	}
	return size[0], size[1], true
}

type DispatchRequest struct {
	AmbulanceID string `json:"ambulanceId" binding:"required"`
	Target      string `json:"target"`
}

// Dispatch handles POST /api/map/dispatch
func (h *MapHandler) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ambulanceId is required")
		return
	}

	res, err := h.tracking.Dispatch(c.Request.Context(), req.AmbulanceID, req.Target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type DispatchNearestRequest struct {
	Target string `json:"target"`
}

// DispatchNearest handles POST /api/map/dispatch-nearest. An empty body
// targets the user location.
func (h *MapHandler) DispatchNearest(c *gin.Context) {
	var req DispatchNearestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	res, err := h.matching.DispatchNearest(c.Request.Context(), req.Target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type CancelDispatchRequest struct {
	AmbulanceID string `json:"ambulanceId" binding:"required"`
}

// Cancel handles POST /api/map/cancel. Cancelling an ambulance that is not
// moving is not an error; the response says whether anything was stopped.
func (h *MapHandler) Cancel(c *gin.Context) {
	var req CancelDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ambulanceId is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": h.tracking.Cancel(req.AmbulanceID)})
}

type UserLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// SetUserLocation handles PUT /api/map/user-location
func (h *MapHandler) SetUserLocation(c *gin.Context) {
	var req UserLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		respondError(c, geo.ErrInvalidCoordinates)
		return
	}
	p := geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		respondError(c, geo.ErrInvalidCoordinates)
		return
	}
	h.tracking.SetUserLocation(p)
	c.JSON(http.StatusOK, gin.H{"userLocation": p})
}

// Refresh handles POST /api/map/refresh
func (h *MapHandler) Refresh(c *gin.Context) {
	if err := h.tracking.Refresh(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tracking.Roster())
}

// Stream handles GET /api/map/ws. The viewer gets the current frame right
// away and then every frame and notice as they are produced.
func (h *MapHandler) Stream(c *gin.Context) {
	frame, err := h.tracking.Frame(0, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	initial := stream.Message{Type: stream.MessageFrame, Frame: frame}
	if err := h.hub.Serve(c.Writer, c.Request, initial); err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
	}
}
