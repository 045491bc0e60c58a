package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"healthease/internal/domain/entities"
	"healthease/internal/repository"
	"healthease/internal/repository/memory"
)

var testToday = time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func setupClinic(t *testing.T) (*repository.Store, *DoctorService, *AppointmentService) {
	t.Helper()
	store := memory.NewStore()
	doctors := NewDoctorService(store.Doctors, zerolog.Nop())
	appts := NewAppointmentService(store.Appointments, store.Doctors, func() time.Time { return testToday }, zerolog.Nop())

	ctx := context.Background()
	for _, req := range []CreateDoctorRequest{
		{Name: "Dr. Smith", Specialization: "Cardiologist"},
		{Name: "Dr. Jane", Specialization: "Dermatologist", OnLeaveUntil: "2026-10-30"},
		{Name: "Dr. Mike", Specialization: "General Physician"},
		{Name: "Dr. Rao", Specialization: "Pediatrician", Available: boolPtr(false)},
	} {
		if _, err := doctors.Create(ctx, req); err != nil {
			t.Fatalf("seed doctor %s: %v", req.Name, err)
		}
	}
	return store, doctors, appts
}

func doctorByName(t *testing.T, s *DoctorService, name string) *entities.Doctor {
	t.Helper()
	list, err := s.List(context.Background(), DoctorFilter{Q: name})
	if err != nil || len(list) != 1 {
		t.Fatalf("lookup %q: %v (%d results)", name, err, len(list))
	}
	return list[0]
}

func TestDoctorService_List(t *testing.T) {
	_, doctors, _ := setupClinic(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter DoctorFilter
		want   []string
	}{
		{"all", DoctorFilter{}, []string{"Dr. Smith", "Dr. Jane", "Dr. Mike", "Dr. Rao"}},
		{"disease keyword", DoctorFilter{Q: "heart"}, []string{"Dr. Smith"}},
		{"disease keyword case-insensitive", DoctorFilter{Q: "Fever"}, []string{"Dr. Mike"}},
		{"child", DoctorFilter{Q: "child"}, []string{"Dr. Rao"}},
		{"free text name", DoctorFilter{Q: "jane"}, []string{"Dr. Jane"}},
		{"free text specialization", DoctorFilter{Q: "derma"}, []string{"Dr. Jane"}},
		{"keyword with no doctors", DoctorFilter{Q: "brain"}, nil},
		{"specialization exact", DoctorFilter{Specialization: "Cardiologist"}, []string{"Dr. Smith"}},
		{"specialization is not a substring match", DoctorFilter{Specialization: "Cardio"}, nil},
		{"both filters", DoctorFilter{Q: "dr", Specialization: "General Physician"}, []string{"Dr. Mike"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := doctors.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(list) != len(tt.want) {
				t.Fatalf("expected %d doctors, got %d", len(tt.want), len(list))
			}
			for i, d := range list {
				if d.Name != tt.want[i] {
					t.Errorf("result %d: expected %s, got %s", i, tt.want[i], d.Name)
				}
			}
		})
	}
}

func TestDoctorService_CreateDefaultsAndValidation(t *testing.T) {
	_, doctors, _ := setupClinic(t)
	ctx := context.Background()

	d, err := doctors.Create(ctx, CreateDoctorRequest{Name: "  Dr. New  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if d.Name != "Dr. New" || d.Specialization != entities.DefaultSpecialization || !d.Available {
		t.Errorf("unexpected defaults: %+v", d)
	}
	if d.AvailabilityTimes == nil {
		t.Error("expected empty availability list, got nil")
	}

	if _, err := doctors.Create(ctx, CreateDoctorRequest{Name: "  "}); !errors.Is(err, ErrDoctorNameRequired) {
		t.Errorf("expected ErrDoctorNameRequired, got %v", err)
	}
	if _, err := doctors.Create(ctx, CreateDoctorRequest{Name: "X", OnLeaveUntil: "next week"}); !errors.Is(err, ErrInvalidLeaveDate) {
		t.Errorf("expected ErrInvalidLeaveDate, got %v", err)
	}
}

func TestDoctorService_UpdatePartial(t *testing.T) {
	_, doctors, _ := setupClinic(t)
	ctx := context.Background()
	jane := doctorByName(t, doctors, "Dr. Jane")

	updated, err := doctors.Update(ctx, jane.ID, UpdateDoctorRequest{
		Available:    boolPtr(false),
		OnLeaveUntil: strPtr(""),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Available || updated.OnLeaveUntil != nil {
		t.Errorf("expected unavailable with leave cleared, got %+v", updated)
	}
	if updated.Specialization != "Dermatologist" || updated.Name != "Dr. Jane" {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	stored, _ := doctors.Get(ctx, jane.ID)
	if stored.Available {
		t.Error("update was not persisted")
	}

	if _, err := doctors.Update(ctx, "missing", UpdateDoctorRequest{}); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestAppointmentService_CreateValidation(t *testing.T) {
	_, doctors, appts := setupClinic(t)
	jane := doctorByName(t, doctors, "Dr. Jane")
	smith := doctorByName(t, doctors, "Dr. Smith")

	tests := []struct {
		name    string
		req     CreateAppointmentRequest
		wantErr error
		wantMsg string
	}{
		{"valid", CreateAppointmentRequest{PatientName: "Asha Rao", Mobile: "9876543210", Date: "2026-10-21", DoctorID: smith.ID}, nil, ""},
		{"today is allowed", CreateAppointmentRequest{PatientName: "Asha Rao", Date: "2026-10-19"}, nil, ""},
		{"digits in name", CreateAppointmentRequest{PatientName: "R2D2", Date: "2026-10-21"}, ErrInvalidPatientName, "Enter valid name (letters & spaces only)."},
		{"one letter name", CreateAppointmentRequest{PatientName: "A", Date: "2026-10-21"}, ErrInvalidPatientName, ""},
		{"short mobile", CreateAppointmentRequest{PatientName: "Asha", Mobile: "12345", Date: "2026-10-21"}, ErrInvalidMobile, "Enter 10-digit mobile."},
		{"missing date", CreateAppointmentRequest{PatientName: "Asha"}, ErrDateRequired, ""},
		{"bad date", CreateAppointmentRequest{PatientName: "Asha", Date: "tomorrow"}, ErrInvalidDate, ""},
		{"yesterday", CreateAppointmentRequest{PatientName: "Asha", Date: "2026-10-18"}, ErrPastDate, "Past dates not allowed"},
		{"unknown doctor", CreateAppointmentRequest{PatientName: "Asha", Date: "2026-10-21", DoctorID: "nope"}, ErrDoctorNotFound, "Doctor not found"},
		{"doctor on leave", CreateAppointmentRequest{PatientName: "Asha", Date: "2026-10-25", DoctorID: jane.ID}, ErrDoctorOnLeave, "Dr. Jane is on leave until 2026-10-30"},
		{"last day of leave", CreateAppointmentRequest{PatientName: "Asha", Date: "2026-10-30T09:00", DoctorID: jane.ID}, ErrDoctorOnLeave, ""},
		{"after leave", CreateAppointmentRequest{PatientName: "Asha", Date: "2026-10-31", DoctorID: jane.ID}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt, err := appts.Create(context.Background(), tt.req)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Create failed: %v", err)
				}
				if appt.Status != entities.AppointmentStatusBooked {
					t.Errorf("expected Booked, got %s", appt.Status)
				}
				if appt.Disease != entities.DefaultDisease {
					t.Errorf("expected default disease, got %q", appt.Disease)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestAppointmentService_ListSortedWithDoctor(t *testing.T) {
	_, doctors, appts := setupClinic(t)
	ctx := context.Background()
	smith := doctorByName(t, doctors, "Dr. Smith")

	for _, date := range []string{"2026-10-20", "2026-11-02", "2026-10-25"} {
		if _, err := appts.Create(ctx, CreateAppointmentRequest{PatientName: "Ravi", Date: date, DoctorID: smith.ID}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := appts.Create(ctx, CreateAppointmentRequest{PatientName: "Walk In", Date: "2026-10-22"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := appts.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"2026-11-02", "2026-10-25", "2026-10-22", "2026-10-20"}
	for i, a := range list {
		if got := a.Date.Format("2006-01-02"); got != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got)
		}
	}
	if list[0].Doctor == nil || list[0].Doctor.Name != "Dr. Smith" || list[0].Doctor.Specialization != "Cardiologist" {
		t.Errorf("expected doctor summary, got %+v", list[0].Doctor)
	}
	if list[2].Doctor != nil {
		t.Errorf("walk-in should have no doctor, got %+v", list[2].Doctor)
	}
}

func TestAppointmentService_Cancel(t *testing.T) {
	_, _, appts := setupClinic(t)
	ctx := context.Background()

	appt, err := appts.Create(ctx, CreateAppointmentRequest{PatientName: "Asha", Date: "2026-10-21"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cancelled, err := appts.Cancel(ctx, appt.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != entities.AppointmentStatusCancelled {
		t.Errorf("expected Cancelled, got %s", cancelled.Status)
	}

	if _, err := appts.Cancel(ctx, appt.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on second cancel, got %v", err)
	}
	if _, err := appts.Cancel(ctx, "missing"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func setupMedicines(t *testing.T) (*MedicineService, *entities.Medicine) {
	t.Helper()
	locks := memory.NewLockManager()
	t.Cleanup(locks.Stop)
	svc := NewMedicineService(memory.NewMedicineRepository(), locks, zerolog.Nop())
	m, err := svc.Create(context.Background(), CreateMedicineRequest{Name: "Paracetamol", Shop: "City Pharmacy", Price: 20, Stock: 5})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return svc, m
}

func TestMedicineService_Order(t *testing.T) {
	svc, m := setupMedicines(t)
	ctx := context.Background()

	got, err := svc.Order(ctx, m.ID, 0)
	if err != nil {
		t.Fatalf("Order failed: %v", err)
	}
	if got.Stock != 4 {
		t.Errorf("expected qty to default to 1 (stock 4), got %d", got.Stock)
	}

	_, err = svc.Order(ctx, m.ID, 5)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if err.Error() != "Insufficient stock available" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if _, err := svc.Order(ctx, "missing", 1); !errors.Is(err, ErrMedicineNotFound) {
		t.Errorf("expected ErrMedicineNotFound, got %v", err)
	}
	if _, err := svc.Order(ctx, m.ID, -2); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}

	stored, _ := svc.Get(ctx, m.ID)
	if stored.Stock != 4 {
		t.Errorf("failed orders must not change stock, got %d", stored.Stock)
	}
}

func TestMedicineService_ConcurrentOrdersNeverOversell(t *testing.T) {
	svc, m := setupMedicines(t)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Order(ctx, m.ID, 1); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 5 {
		t.Errorf("expected exactly 5 successful orders, got %d", success)
	}
	stored, _ := svc.Get(ctx, m.ID)
	if stored.Stock != 0 {
		t.Errorf("expected stock 0, got %d", stored.Stock)
	}
}

func TestMedicineService_ListSearch(t *testing.T) {
	svc, _ := setupMedicines(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, CreateMedicineRequest{Name: "Aspirin", Stock: 3}); err != nil {
		t.Fatal(err)
	}

	all, _ := svc.List(ctx, "")
	if len(all) != 2 {
		t.Errorf("expected 2 medicines, got %d", len(all))
	}
	hits, _ := svc.List(ctx, "PARA")
	if len(hits) != 1 || hits[0].Name != "Paracetamol" {
		t.Errorf("unexpected search result: %+v", hits)
	}

	if _, err := svc.Create(ctx, CreateMedicineRequest{Name: ""}); !errors.Is(err, ErrMedicineNameRequired) {
		t.Errorf("expected ErrMedicineNameRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateMedicineRequest{Name: "X", Stock: -1}); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestTelecallService(t *testing.T) {
	svc := NewTelecallService(memory.NewTelecallRepository(), rand.New(rand.NewSource(7)), zerolog.Nop())
	ctx := context.Background()

	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	clock := base
	timeNow = func() time.Time { return clock }
	t.Cleanup(func() { timeNow = time.Now })

	first, err := svc.Create(ctx, CreateTelecallRequest{HospitalName: "City Hospital", Reason: "Bed availability"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !first.Available {
		t.Error("expected available to default to true")
	}
	if len(first.Phone) != len("+91-")+10 || first.Phone[:4] != "+91-" {
		t.Errorf("unexpected placeholder phone %q", first.Phone)
	}

	clock = base.Add(time.Hour)
	second, err := svc.Create(ctx, CreateTelecallRequest{HospitalName: "Apollo", Reason: "Transfer", Phone: "080-1234", Available: boolPtr(false)})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if second.Phone != "080-1234" || second.Available {
		t.Errorf("explicit fields not kept: %+v", second)
	}

	list, _ := svc.List(ctx)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("expected newest first, got %+v", list)
	}

	for _, req := range []CreateTelecallRequest{
		{Reason: "x"},
		{HospitalName: "x"},
		{HospitalName: "  ", Reason: "  "},
	} {
		if _, err := svc.Create(ctx, req); !errors.Is(err, ErrTelecallFieldsRequired) {
			t.Errorf("%+v: expected ErrTelecallFieldsRequired, got %v", req, err)
		}
	}
}
