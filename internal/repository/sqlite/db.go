// Package sqlite stores each collection as a table of JSON documents in a
// single SQLite file, using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"healthease/internal/repository"
)

// Collection table names.
const (
	tableAmbulances   = "ambulances"
	tableDoctors      = "doctors"
	tableAppointments = "appointments"
	tableMedicines    = "medicines"
	tableTelecalls    = "telecall_requests"
	tableOrders       = "orders"
)

var tables = []string{
	tableAmbulances, tableDoctors, tableAppointments,
	tableMedicines, tableTelecalls, tableOrders,
}

// DB wraps the SQLite handle.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// SQLite allows one writer; a single pooled connection also keeps the
	// per-connection pragmas below in effect.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	d := &DB{db: db}
	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) migrate(ctx context.Context) error {
	return d.Transaction(ctx, func(tx *sql.Tx) error {
		for _, table := range tables {
			stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id         TEXT PRIMARY KEY,
				doc        TEXT NOT NULL,
				created_at TEXT NOT NULL DEFAULT (strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now')),
				updated_at TEXT NOT NULL DEFAULT (strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now'))
			)`, table)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate %s: %w", table, err)
			}
		}
		return nil
	})
}

// Ping checks the connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Transaction runs fn inside a transaction, rolling back on error or panic.
func (d *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Store returns a repository.Store backed by this database.
func (d *DB) Store() *repository.Store {
	return &repository.Store{
		Ambulances:   NewAmbulanceRepository(d),
		Doctors:      NewDoctorRepository(d),
		Appointments: NewAppointmentRepository(d),
		Medicines:    NewMedicineRepository(d),
		Telecalls:    NewTelecallRepository(d),
		Orders:       NewOrderRepository(d),
	}
}
