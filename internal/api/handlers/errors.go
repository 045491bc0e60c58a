package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"healthease/internal/domain/entities"
	"healthease/internal/geo"
	"healthease/internal/services"
	"healthease/internal/sim"
)

var notFoundErrors = []error{
	services.ErrAmbulanceNotFound,
	services.ErrDoctorNotFound,
	services.ErrAppointmentNotFound,
	services.ErrMedicineNotFound,
	services.ErrOrderNotFound,
	services.ErrNoAmbulanceAvailable,
	sim.ErrNoDelivery,
}

var conflictErrors = []error{
	sim.ErrAmbulanceBusy,
	sim.ErrDeliveryRunning,
	sim.ErrDeliveryArrived,
	entities.ErrInvalidTransition,
}

var badRequestErrors = []error{
	geo.ErrInvalidCoordinates,
	sim.ErrNoTarget,
	services.ErrInvalidLocation,
	services.ErrInvalidSpeed,
	services.ErrInvalidRadius,
	services.ErrDoctorNameRequired,
	services.ErrInvalidLeaveDate,
	services.ErrInvalidPatientName,
	services.ErrInvalidMobile,
	services.ErrDateRequired,
	services.ErrInvalidDate,
	services.ErrPastDate,
	services.ErrDoctorOnLeave,
	services.ErrMedicineNameRequired,
	services.ErrInvalidQuantity,
	services.ErrInvalidPrice,
	services.ErrInsufficientStock,
	services.ErrTelecallFieldsRequired,
	services.ErrAddressRequired,
	services.ErrInvalidFrameSize,
	entities.ErrUnknownPayment,
	entities.ErrInvalidUPI,
	entities.ErrInvalidCard,
	entities.ErrInvalidExpiry,
	entities.ErrInvalidCVV,
}

// statusFor maps a service error to an HTTP status.
//
// Go Learning Note — errors.Is vs ==:
// errors.Is walks the wrap chain (fmt.Errorf("...: %w", err)) and also asks
// custom error types through their Is method, so a *sim.BusyError matches
// sim.ErrAmbulanceBusy and an OnLeaveError matches ErrDoctorOnLeave. A plain
// switch on err would miss both.
func statusFor(err error) int {
	switch {
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case errors.Is(err, sim.ErrLoadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError writes {"error": msg}. Internal errors are recorded on the
// context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// badRequest reports a malformed request body or query.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
