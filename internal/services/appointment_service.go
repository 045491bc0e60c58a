package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/repository"
	"healthease/pkg/utils"
)

var (
	ErrAppointmentNotFound = errors.New("Appointment not found")
	ErrInvalidPatientName  = errors.New("Enter valid name (letters & spaces only).")
	ErrInvalidMobile       = errors.New("Enter 10-digit mobile.")
	ErrDateRequired        = errors.New("Choose appointment date.")
	ErrInvalidDate         = errors.New("Invalid appointment date.")
	ErrPastDate            = errors.New("Past dates not allowed")
	ErrDoctorOnLeave       = errors.New("doctor is on leave")
	ErrInvalidTransition   = entities.ErrInvalidTransition
)

var (
	patientNamePattern = regexp.MustCompile(`^[A-Za-z ]{2,100}$`)
	mobilePattern      = regexp.MustCompile(`^\d{10}$`)
)

// OnLeaveError rejects a booking that falls within a doctor's leave.
type OnLeaveError struct {
	Doctor string
	Until  time.Time
}

func (e *OnLeaveError) Error() string {
	return fmt.Sprintf("%s is on leave until %s", e.Doctor, e.Until.Format("2006-01-02"))
}

func (e *OnLeaveError) Is(target error) bool {
	return target == ErrDoctorOnLeave
}

type AppointmentService struct {
	repo    repository.AppointmentRepository
	doctors repository.DoctorRepository
	now     func() time.Time
	logger  zerolog.Logger
}

// NewAppointmentService creates the service. now decides what "today" is;
// nil means time.Now.
func NewAppointmentService(repo repository.AppointmentRepository, doctors repository.DoctorRepository, now func() time.Time, logger zerolog.Logger) *AppointmentService {
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{
		repo:    repo,
		doctors: doctors,
		now:     now,
		logger:  logger.With().Str("component", "appointments").Logger(),
	}
}

type CreateAppointmentRequest struct {
	PatientName string `json:"patientName"`
	Mobile      string `json:"mobile"`
	Disease     string `json:"disease"`
	Date        string `json:"date"`
	DoctorID    string `json:"doctorId"`
}

// List returns appointments newest date first, each with its doctor's name
// and specialization attached.
func (s *AppointmentService) List(ctx context.Context) ([]*entities.Appointment, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})

	cache := make(map[string]*entities.DoctorSummary)
	for _, a := range list {
		if a.DoctorID == "" {
			continue
		}
		summary, seen := cache[a.DoctorID]
		if !seen {
			if d, err := s.doctors.GetByID(ctx, a.DoctorID); err == nil {
				summary = d.Summary()
			}
			cache[a.DoctorID] = summary
		}
		a.Doctor = summary
	}
	return list, nil
}

// Create validates and books an appointment.
func (s *AppointmentService) Create(ctx context.Context, req CreateAppointmentRequest) (*entities.Appointment, error) {
	name := strings.TrimSpace(req.PatientName)
	if !patientNamePattern.MatchString(name) {
		return nil, ErrInvalidPatientName
	}
	mobile := strings.TrimSpace(req.Mobile)
	if mobile != "" && !mobilePattern.MatchString(mobile) {
		return nil, ErrInvalidMobile
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, ErrDateRequired
	}
	date, err := entities.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return nil, ErrInvalidDate
	}
	if dateOnly(date).Before(dateOnly(s.now())) {
		return nil, ErrPastDate
	}

	var doctor *entities.Doctor
	if req.DoctorID != "" {
		doctor, err = s.doctors.GetByID(ctx, req.DoctorID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		if err != nil {
			return nil, err
		}
		if doctor.OnLeaveOn(dateOnly(date)) {
			return nil, &OnLeaveError{Doctor: doctor.Name, Until: *doctor.OnLeaveUntil}
		}
	}

	appt := entities.NewAppointment(utils.GenerateID(), name, mobile, strings.TrimSpace(req.Disease), date, req.DoctorID)
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	if doctor != nil {
		appt.Doctor = doctor.Summary()
	}

	s.logger.Info().
		Str("appointment_id", appt.ID).
		Str("doctor_id", appt.DoctorID).
		Time("date", appt.Date).
		Msg("appointment booked")
	return appt, nil
}

// Cancel marks an appointment Cancelled. Cancelling twice is an invalid
// transition.
func (s *AppointmentService) Cancel(ctx context.Context, id string) (*entities.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := appt.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}
	s.logger.Info().Str("appointment_id", id).Msg("appointment cancelled")
	return appt, nil
}
