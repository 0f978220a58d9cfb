package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/airquality-dashboard/internal/airquality"
)

// ErrDeviceNotFound is returned when the registry has no row for a device id.
var ErrDeviceNotFound = errors.New("device not found")

const schema = `
CREATE TABLE IF NOT EXISTS devices (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	code          TEXT NOT NULL DEFAULT '',
	type          TEXT NOT NULL DEFAULT 'fixed',
	location_type TEXT NOT NULL DEFAULT '',
	is_online     INTEGER NOT NULL DEFAULT 0,
	last_seen     INTEGER NOT NULL DEFAULT 0,
	updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_devices_code ON devices(code);
`

// DeviceRegistry persists the last known device list in SQLite so the
// dashboard can list devices while the backend is unreachable.
type DeviceRegistry struct {
	db  *sql.DB
	now func() time.Time
}

// OpenRegistry opens (or creates) the SQLite database at path and migrates it.
func OpenRegistry(path string) (*DeviceRegistry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	// A single writer keeps :memory: databases coherent across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate registry: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping registry: %w", err)
	}

	log.Printf("INFO: store: device registry ready at %s", path)
	return &DeviceRegistry{db: db, now: time.Now}, nil
}

// Upsert inserts or replaces devices in a single transaction.
func (r *DeviceRegistry) Upsert(ctx context.Context, devices ...airquality.Device) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO devices (id, name, code, type, location_type, is_online, last_seen, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	code = excluded.code,
	type = excluded.type,
	location_type = excluded.location_type,
	is_online = excluded.is_online,
	last_seen = excluded.last_seen,
	updated_at = excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	updated := r.now().UTC().UnixMilli()
	for _, d := range devices {
		var lastSeen int64
		if !d.LastSeen.IsZero() {
			lastSeen = d.LastSeen.UTC().UnixMilli()
		}
		if _, err := stmt.ExecContext(ctx,
			d.ID, d.Name, d.Code, string(d.Type), d.LocationType, d.IsOnline, lastSeen, updated,
		); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("upsert %s: %v, rollback error: %w", d.ID, err, rbErr)
			}
			return fmt.Errorf("upsert %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const selectDevice = `SELECT id, name, code, type, location_type, is_online, last_seen FROM devices`

// Get returns a single device by id.
func (r *DeviceRegistry) Get(ctx context.Context, id string) (airquality.Device, error) {
	row := r.db.QueryRowContext(ctx, selectDevice+` WHERE id = ?`, id)
	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return airquality.Device{}, ErrDeviceNotFound
	}
	return d, err
}

// List returns every known device ordered by name.
func (r *DeviceRegistry) List(ctx context.Context) ([]airquality.Device, error) {
	rows, err := r.db.QueryContext(ctx, selectDevice+` ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var out []airquality.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (r *DeviceRegistry) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (airquality.Device, error) {
	var (
		d        airquality.Device
		typ      string
		online   bool
		lastSeen int64
	)
	if err := s.Scan(&d.ID, &d.Name, &d.Code, &typ, &d.LocationType, &online, &lastSeen); err != nil {
		return airquality.Device{}, err
	}
	d.Type = airquality.DeviceType(typ)
	d.IsOnline = online
	if lastSeen > 0 {
		d.LastSeen = time.UnixMilli(lastSeen).UTC()
	}
	return d, nil
}
