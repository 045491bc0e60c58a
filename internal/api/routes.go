package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthease/internal/api/handlers"
	"healthease/internal/api/middleware"
)

type Router struct {
	ambulanceHandler *handlers.AmbulanceHandler
	clinicHandler    *handlers.ClinicHandler
	orderHandler     *handlers.OrderHandler
	mapHandler       *handlers.MapHandler
	auth             *middleware.Authenticator
}

func NewRouter(
	ambulanceHandler *handlers.AmbulanceHandler,
	clinicHandler *handlers.ClinicHandler,
	orderHandler *handlers.OrderHandler,
	mapHandler *handlers.MapHandler,
	auth *middleware.Authenticator,
) *Router {
	return &Router{
		ambulanceHandler: ambulanceHandler,
		clinicHandler:    clinicHandler,
		orderHandler:     orderHandler,
		mapHandler:       mapHandler,
		auth:             auth,
	}
}

// Setup registers every route. Reads are public; writes need a staff token,
// except appointments and orders which patients may also create.
func (r *Router) Setup(engine *gin.Engine) {
	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "auth": r.auth.Enabled()})
	})

	api := engine.Group("/api")
	api.Use(r.auth.Authenticate())

	staff := middleware.RequireRole(middleware.RoleStaff)
	anyone := middleware.RequireRole(middleware.RoleStaff, middleware.RolePatient)

	// Fleet
	ambulances := api.Group("/ambulances")
	{
		ambulances.GET("", r.ambulanceHandler.List)
		ambulances.GET("/nearby", r.ambulanceHandler.Nearby)
		ambulances.GET("/:id", r.ambulanceHandler.Get)
		ambulances.POST("", staff, r.ambulanceHandler.Create)
		ambulances.PUT("/:id", staff, r.ambulanceHandler.Update)
		ambulances.DELETE("/:id", staff, r.ambulanceHandler.Delete)
	}

	// Clinic
	api.GET("/doctors", r.clinicHandler.ListDoctors)
	api.POST("/doctors", staff, r.clinicHandler.CreateDoctor)
	api.PUT("/doctors/:id", staff, r.clinicHandler.UpdateDoctor)

	api.GET("/appointments", r.clinicHandler.ListAppointments)
	api.POST("/appointments", anyone, r.clinicHandler.CreateAppointment)
	api.POST("/appointments/:id/cancel", anyone, r.clinicHandler.CancelAppointment)

	api.GET("/medicines", r.clinicHandler.ListMedicines)
	api.POST("/medicines", staff, r.clinicHandler.CreateMedicine)
	api.POST("/medicines/:id/order", anyone, r.clinicHandler.OrderMedicine)

	api.GET("/telecalling", r.clinicHandler.ListTelecalls)
	api.POST("/telecalling", staff, r.clinicHandler.CreateTelecall)

	// Orders
	api.POST("/orders", anyone, r.orderHandler.Place)
	api.GET("/orders/:id", r.orderHandler.Get)
	api.POST("/orders/:id/cancel", anyone, r.orderHandler.Cancel)

	// Live map
	live := api.Group("/map")
	{
		live.GET("/state", r.mapHandler.State)
		live.GET("/status", r.mapHandler.Status)
		live.GET("/roster", r.mapHandler.Roster)
		live.GET("/notices", r.mapHandler.Notices)
		live.GET("/geojson", r.mapHandler.GeoJSON)
		live.GET("/frame", r.mapHandler.Frame)
		live.GET("/frame.svg", r.mapHandler.FrameSVG)
		live.GET("/ws", r.mapHandler.Stream)

		live.POST("/dispatch", staff, r.mapHandler.Dispatch)
		live.POST("/dispatch-nearest", staff, r.mapHandler.DispatchNearest)
		live.POST("/cancel", staff, r.mapHandler.Cancel)
		live.PUT("/user-location", anyone, r.mapHandler.SetUserLocation)
		live.POST("/refresh", anyone, r.mapHandler.Refresh)

		live.POST("/delivery/track", anyone, r.orderHandler.TrackDelivery)
		live.POST("/delivery/stop", anyone, r.orderHandler.StopDelivery)
		live.POST("/delivery/cancel", anyone, r.orderHandler.CancelDelivery)
	}
}
