// Package booking turns a chosen slot into a confirmed appointment and back.
//
// Correctness under concurrent confirmations does not depend on anything in
// this package: two conversations racing for one slot both reach the store's
// atomic insert, and the store's uniqueness constraint picks the winner. The
// loser gets ErrSlotTaken.
package booking

import (
	"context"
	"errors"
	"time"

	"slot-bot/types"
)

var (
	ErrSlotNotFound       = errors.New("booking: slot not found")
	ErrSlotTaken          = errors.New("booking: slot already taken")
	ErrNotFoundOrNotOwned = errors.New("booking: appointment not found or not owned")
	ErrServiceNotFound    = errors.New("booking: service not found")
	ErrInvalidDate        = errors.New("booking: invalid date")
)

// Store is the slot/appointment collaborator. Implementations must make
// ConfirmAppointment a single atomic operation that fails with
// storage.ErrSlotTaken when the slot already has an appointment.
type Store interface {
	GetService(ctx context.Context, id int64) (*types.Service, error)
	ListServices(ctx context.Context) ([]types.Service, error)
	ListFreeSlots(ctx context.Context, serviceID int64, from, to time.Time, limit int) ([]types.Slot, error)
	ConfirmAppointment(ctx context.Context, slotID, chatID int64) (*types.Booking, error)
	CancelAppointment(ctx context.Context, appointmentID, chatID int64) (*types.Booking, error)
	ListAppointments(ctx context.Context, chatID int64, limit int) ([]types.Booking, error)
}

// Announcer receives booking confirmations. Announce must not block.
type Announcer interface {
	Announce(evt types.BookingConfirmed)
}

// Recorder counts booking outcomes; nil-safe implementations are expected.
type Recorder interface {
	ObserveConfirm(outcome string)
	ObserveCancel(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveConfirm(string) {}
func (nopRecorder) ObserveCancel(string)  {}

type nopAnnouncer struct{}

func (nopAnnouncer) Announce(types.BookingConfirmed) {}
