package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"healthease/internal/geo"
	"healthease/internal/services"
)

type AmbulanceHandler struct {
	ambulances     *services.AmbulanceService
	searchRadiusKm float64
}

func NewAmbulanceHandler(ambulances *services.AmbulanceService, searchRadiusKm float64) *AmbulanceHandler {
	if searchRadiusKm <= 0 {
		searchRadiusKm = 5
	}
	return &AmbulanceHandler{ambulances: ambulances, searchRadiusKm: searchRadiusKm}
}

// List handles GET /api/ambulances
func (h *AmbulanceHandler) List(c *gin.Context) {
	list, err := h.ambulances.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get handles GET /api/ambulances/:id
func (h *AmbulanceHandler) Get(c *gin.Context) {
	a, err := h.ambulances.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Create handles POST /api/ambulances
func (h *AmbulanceHandler) Create(c *gin.Context) {
	var req services.CreateAmbulanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	a, err := h.ambulances.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Update handles PUT /api/ambulances/:id
func (h *AmbulanceHandler) Update(c *gin.Context) {
	var req services.UpdateAmbulanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	a, err := h.ambulances.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Delete handles DELETE /api/ambulances/:id
func (h *AmbulanceHandler) Delete(c *gin.Context) {
	if err := h.ambulances.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Nearby handles GET /api/ambulances/nearby?lat=&lng=&radiusKm=
func (h *AmbulanceHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		badRequest(c, "lat and lng query parameters are required")
		return
	}
	radius := h.searchRadiusKm
	if raw := c.Query("radiusKm"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, services.ErrInvalidRadius.Error())
			return
		}
		radius = r
	}

	hits, err := h.ambulances.Nearby(c.Request.Context(), geo.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hits)
}
