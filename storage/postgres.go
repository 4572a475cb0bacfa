package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"slot-bot/types"
)

var (
	ErrServiceNotFound     = errors.New("storage: service not found")
	ErrSlotNotFound        = errors.New("storage: slot not found")
	ErrSlotTaken           = errors.New("storage: slot already has an appointment")
	ErrAppointmentNotFound = errors.New("storage: appointment not found")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PgxPool is the subset of *pgxpool.Pool the store needs; pgxmock satisfies it.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Postgres reads the service catalog and slots, and owns the appointments
// table. The one-confirmed-appointment-per-slot invariant is the
// appointments_slot_id_key UNIQUE constraint.
type Postgres struct {
	pool PgxPool
}

func NewPostgres(pool PgxPool) *Postgres {
	if pool == nil {
		panic("storage: pgx pool required")
	}
	return &Postgres{pool: pool}
}

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	return pool, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) GetService(ctx context.Context, id int64) (*types.Service, error) {
	var svc types.Service
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, duration_minutes FROM services WHERE id = $1`, id,
	).Scan(&svc.ID, &svc.Name, &svc.DurationMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get service: %w", err)
	}
	return &svc, nil
}

func (p *Postgres) ListServices(ctx context.Context) ([]types.Service, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, duration_minutes FROM services ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list services: %w", err)
	}
	defer rows.Close()

	var out []types.Service
	for rows.Next() {
		var svc types.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.DurationMinutes); err != nil {
			return nil, fmt.Errorf("storage: scan service: %w", err)
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

// ListFreeSlots returns unbooked slots of a service with from <= start_at < to,
// ordered by start time and capped at limit.
func (p *Postgres) ListFreeSlots(ctx context.Context, serviceID int64, from, to time.Time, limit int) ([]types.Slot, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT s.id, s.service_id, s.start_at, s.end_at
		FROM slots s
		WHERE s.service_id = $1
		  AND s.start_at >= $2
		  AND s.start_at < $3
		  AND NOT EXISTS (SELECT 1 FROM appointments a WHERE a.slot_id = s.id)
		ORDER BY s.start_at, s.id
		LIMIT $4`,
		serviceID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list slots: %w", err)
	}
	defer rows.Close()

	var out []types.Slot
	for rows.Next() {
		var s types.Slot
		if err := rows.Scan(&s.ID, &s.ServiceID, &s.StartAt, &s.EndAt); err != nil {
			return nil, fmt.Errorf("storage: scan slot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ConfirmAppointment inserts a confirmed appointment for slotID in a single
// statement. A missing slot inserts nothing (ErrSlotNotFound); a second
// appointment for the same slot violates the unique constraint (ErrSlotTaken).
func (p *Postgres) ConfirmAppointment(ctx context.Context, slotID, chatID int64) (*types.Booking, error) {
	row := p.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO appointments (slot_id, chat_id, status)
			SELECT id, $2, 'confirmed' FROM slots WHERE id = $1
			RETURNING id, slot_id, chat_id, status, created_at
		)
		SELECT ins.id, ins.slot_id, ins.chat_id, ins.status, ins.created_at, NULL::timestamptz,
		       s.service_id, s.start_at, s.end_at, sv.name, sv.duration_minutes
		FROM ins
		JOIN slots s ON s.id = ins.slot_id
		JOIN services sv ON sv.id = s.service_id`,
		slotID, chatID)

	b, err := scanBooking(row)
	if err == nil {
		return b, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return nil, ErrSlotTaken
		case pgForeignKeyViolation:
			return nil, ErrSlotNotFound
		}
	}
	return nil, fmt.Errorf("storage: confirm appointment: %w", err)
}

// CancelAppointment marks the appointment cancelled if it belongs to chatID.
// The slot stays bound to the appointment.
func (p *Postgres) CancelAppointment(ctx context.Context, appointmentID, chatID int64) (*types.Booking, error) {
	row := p.pool.QueryRow(ctx, `
		WITH upd AS (
			UPDATE appointments
			SET status = 'cancelled', cancelled_at = COALESCE(cancelled_at, now())
			WHERE id = $1 AND chat_id = $2
			RETURNING id, slot_id, chat_id, status, created_at, cancelled_at
		)
		SELECT upd.id, upd.slot_id, upd.chat_id, upd.status, upd.created_at, upd.cancelled_at,
		       s.service_id, s.start_at, s.end_at, sv.name, sv.duration_minutes
		FROM upd
		JOIN slots s ON s.id = upd.slot_id
		JOIN services sv ON sv.id = s.service_id`,
		appointmentID, chatID)

	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cancel appointment: %w", err)
	}
	return b, nil
}

// ListAppointments returns the chat's appointments, latest slot first.
func (p *Postgres) ListAppointments(ctx context.Context, chatID int64, limit int) ([]types.Booking, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT a.id, a.slot_id, a.chat_id, a.status, a.created_at, a.cancelled_at,
		       s.service_id, s.start_at, s.end_at, sv.name, sv.duration_minutes
		FROM appointments a
		JOIN slots s ON s.id = a.slot_id
		JOIN services sv ON sv.id = s.service_id
		WHERE a.chat_id = $1
		ORDER BY s.start_at DESC, a.id DESC
		LIMIT $2`,
		chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: list appointments: %w", err)
	}
	defer rows.Close()

	var out []types.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan appointment: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*types.Booking, error) {
	var (
		b           types.Booking
		status      string
		cancelledAt pgtype.Timestamptz
	)
	err := row.Scan(
		&b.Appointment.ID, &b.Appointment.SlotID, &b.Appointment.ChatID, &status, &b.Appointment.CreatedAt, &cancelledAt,
		&b.Slot.ServiceID, &b.Slot.StartAt, &b.Slot.EndAt, &b.Service.Name, &b.Service.DurationMinutes,
	)
	if err != nil {
		return nil, err
	}
	b.Appointment.Status = types.AppointmentStatus(status)
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.Appointment.CancelledAt = &t
	}
	b.Slot.ID = b.Appointment.SlotID
	b.Service.ID = b.Slot.ServiceID
	return &b, nil
}
