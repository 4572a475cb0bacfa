package booking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"slot-bot/logger"
	"slot-bot/storage"
	"slot-bot/types"
)

// Engine confirms and cancels appointments.
type Engine struct {
	store     Store
	announcer Announcer
	recorder  Recorder
	log       *zap.Logger
}

func NewEngine(store Store, announcer Announcer, recorder Recorder, log *zap.Logger) *Engine {
	if announcer == nil {
		announcer = nopAnnouncer{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Engine{store: store, announcer: announcer, recorder: recorder, log: logger.OrNop(log)}
}

// Confirm books slotID for chatID. Exactly one call per slot ever succeeds;
// every later call, from any conversation, returns ErrSlotTaken. On success
// the booking is announced without waiting for delivery.
func (e *Engine) Confirm(ctx context.Context, slotID, chatID int64) (*types.Booking, error) {
	b, err := e.store.ConfirmAppointment(ctx, slotID, chatID)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrSlotTaken):
		e.recorder.ObserveConfirm("taken")
		e.log.Info("slot already taken", zap.Int64("slot_id", slotID), zap.Int64("chat_id", chatID))
		return nil, ErrSlotTaken
	case errors.Is(err, storage.ErrSlotNotFound):
		e.recorder.ObserveConfirm("not_found")
		return nil, ErrSlotNotFound
	default:
		e.recorder.ObserveConfirm("error")
		return nil, fmt.Errorf("booking: confirm slot %d: %w", slotID, err)
	}

	e.recorder.ObserveConfirm("confirmed")
	e.log.Info("appointment confirmed",
		zap.Int64("appointment_id", b.Appointment.ID),
		zap.Int64("slot_id", slotID),
		zap.Int64("chat_id", chatID),
	)
	e.announcer.Announce(b.ConfirmedEvent())
	return b, nil
}

// Cancel withdraws an appointment owned by chatID. A missing appointment and
// someone else's appointment both yield ErrNotFoundOrNotOwned.
func (e *Engine) Cancel(ctx context.Context, appointmentID, chatID int64) (*types.Booking, error) {
	b, err := e.store.CancelAppointment(ctx, appointmentID, chatID)
	if errors.Is(err, storage.ErrAppointmentNotFound) {
		e.recorder.ObserveCancel("rejected")
		return nil, ErrNotFoundOrNotOwned
	}
	if err != nil {
		e.recorder.ObserveCancel("error")
		return nil, fmt.Errorf("booking: cancel appointment %d: %w", appointmentID, err)
	}
	e.recorder.ObserveCancel("cancelled")
	e.log.Info("appointment cancelled", zap.Int64("appointment_id", appointmentID), zap.Int64("chat_id", chatID))
	return b, nil
}

// Appointments lists the chat's appointments for /my.
func (e *Engine) Appointments(ctx context.Context, chatID int64, limit int) ([]types.Booking, error) {
	list, err := e.store.ListAppointments(ctx, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("booking: list appointments: %w", err)
	}
	return list, nil
}
