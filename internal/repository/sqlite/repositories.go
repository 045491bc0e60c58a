package sqlite

import (
	"context"

	"healthease/internal/domain/entities"
)

type AmbulanceRepository struct {
	c *collection[entities.Ambulance]
}

func NewAmbulanceRepository(db *DB) *AmbulanceRepository {
	return &AmbulanceRepository{newCollection(db, tableAmbulances, func(a *entities.Ambulance) string { return a.ID })}
}

func (r *AmbulanceRepository) Create(ctx context.Context, a *entities.Ambulance) error {
	return r.c.create(ctx, a)
}

func (r *AmbulanceRepository) GetByID(ctx context.Context, id string) (*entities.Ambulance, error) {
	return r.c.get(ctx, id)
}

func (r *AmbulanceRepository) Update(ctx context.Context, a *entities.Ambulance) error {
	return r.c.update(ctx, a)
}

func (r *AmbulanceRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

func (r *AmbulanceRepository) List(ctx context.Context) ([]*entities.Ambulance, error) {
	return r.c.list(ctx)
}

type DoctorRepository struct {
	c *collection[entities.Doctor]
}

func NewDoctorRepository(db *DB) *DoctorRepository {
	return &DoctorRepository{newCollection(db, tableDoctors, func(d *entities.Doctor) string { return d.ID })}
}

func (r *DoctorRepository) Create(ctx context.Context, d *entities.Doctor) error {
	return r.c.create(ctx, d)
}

func (r *DoctorRepository) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	return r.c.get(ctx, id)
}

func (r *DoctorRepository) Update(ctx context.Context, d *entities.Doctor) error {
	return r.c.update(ctx, d)
}

func (r *DoctorRepository) List(ctx context.Context) ([]*entities.Doctor, error) {
	return r.c.list(ctx)
}

type AppointmentRepository struct {
	c *collection[entities.Appointment]
}

func NewAppointmentRepository(db *DB) *AppointmentRepository {
	return &AppointmentRepository{newCollection(db, tableAppointments, func(a *entities.Appointment) string { return a.ID })}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *entities.Appointment) error {
	return r.c.create(ctx, a)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	return r.c.get(ctx, id)
}

func (r *AppointmentRepository) Update(ctx context.Context, a *entities.Appointment) error {
	return r.c.update(ctx, a)
}

func (r *AppointmentRepository) List(ctx context.Context) ([]*entities.Appointment, error) {
	return r.c.list(ctx)
}

type MedicineRepository struct {
	c *collection[entities.Medicine]
}

func NewMedicineRepository(db *DB) *MedicineRepository {
	return &MedicineRepository{newCollection(db, tableMedicines, func(m *entities.Medicine) string { return m.ID })}
}

func (r *MedicineRepository) Create(ctx context.Context, m *entities.Medicine) error {
	return r.c.create(ctx, m)
}

func (r *MedicineRepository) GetByID(ctx context.Context, id string) (*entities.Medicine, error) {
	return r.c.get(ctx, id)
}

func (r *MedicineRepository) Update(ctx context.Context, m *entities.Medicine) error {
	return r.c.update(ctx, m)
}

func (r *MedicineRepository) List(ctx context.Context) ([]*entities.Medicine, error) {
	return r.c.list(ctx)
}

type TelecallRepository struct {
	c *collection[entities.TelecallRequest]
}

func NewTelecallRepository(db *DB) *TelecallRepository {
	return &TelecallRepository{newCollection(db, tableTelecalls, func(t *entities.TelecallRequest) string { return t.ID })}
}

func (r *TelecallRepository) Create(ctx context.Context, t *entities.TelecallRequest) error {
	return r.c.create(ctx, t)
}

func (r *TelecallRepository) List(ctx context.Context) ([]*entities.TelecallRequest, error) {
	return r.c.list(ctx)
}

type OrderRepository struct {
	c *collection[entities.Order]
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{newCollection(db, tableOrders, func(o *entities.Order) string { return o.ID })}
}

func (r *OrderRepository) Create(ctx context.Context, o *entities.Order) error {
	return r.c.create(ctx, o)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entities.Order, error) {
	return r.c.get(ctx, id)
}

func (r *OrderRepository) Update(ctx context.Context, o *entities.Order) error {
	return r.c.update(ctx, o)
}

func (r *OrderRepository) List(ctx context.Context) ([]*entities.Order, error) {
	return r.c.list(ctx)
}
