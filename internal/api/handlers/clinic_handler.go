package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthease/internal/services"
)

// ClinicHandler serves doctors, appointments, medicines and telecalling
// requests.
type ClinicHandler struct {
	doctors      *services.DoctorService
	appointments *services.AppointmentService
	medicines    *services.MedicineService
	telecalls    *services.TelecallService
}

func NewClinicHandler(
	doctors *services.DoctorService,
	appointments *services.AppointmentService,
	medicines *services.MedicineService,
	telecalls *services.TelecallService,
) *ClinicHandler {
	return &ClinicHandler{
		doctors:      doctors,
		appointments: appointments,
		medicines:    medicines,
		telecalls:    telecalls,
	}
}

// ListDoctors handles GET /api/doctors?q=&specialization=
func (h *ClinicHandler) ListDoctors(c *gin.Context) {
	list, err := h.doctors.List(c.Request.Context(), services.DoctorFilter{
		Q:              c.Query("q"),
		Specialization: c.Query("specialization"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateDoctor handles POST /api/doctors
func (h *ClinicHandler) CreateDoctor(c *gin.Context) {
	var req services.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := h.doctors.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// UpdateDoctor handles PUT /api/doctors/:id
func (h *ClinicHandler) UpdateDoctor(c *gin.Context) {
	var req services.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := h.doctors.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// ListAppointments handles GET /api/appointments
func (h *ClinicHandler) ListAppointments(c *gin.Context) {
	list, err := h.appointments.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateAppointment handles POST /api/appointments
func (h *ClinicHandler) CreateAppointment(c *gin.Context) {
	var req services.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	a, err := h.appointments.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// CancelAppointment handles POST /api/appointments/:id/cancel
func (h *ClinicHandler) CancelAppointment(c *gin.Context) {
	a, err := h.appointments.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ListMedicines handles GET /api/medicines?q=
func (h *ClinicHandler) ListMedicines(c *gin.Context) {
	list, err := h.medicines.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateMedicine handles POST /api/medicines
func (h *ClinicHandler) CreateMedicine(c *gin.Context) {
	var req services.CreateMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	m, err := h.medicines.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

type orderMedicineRequest struct {
	Qty int `json:"qty"`
}

// OrderMedicine handles POST /api/medicines/:id/order. An empty body orders
// one unit.
func (h *ClinicHandler) OrderMedicine(c *gin.Context) {
	var req orderMedicineRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	m, err := h.medicines.Order(c.Request.Context(), c.Param("id"), req.Qty)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order placed", "medicine": m})
}

// ListTelecalls handles GET /api/telecalling
func (h *ClinicHandler) ListTelecalls(c *gin.Context) {
	list, err := h.telecalls.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateTelecall handles POST /api/telecalling
func (h *ClinicHandler) CreateTelecall(c *gin.Context) {
	var req services.CreateTelecallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.telecalls.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}
