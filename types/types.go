package types

import (
	"fmt"
	"time"
)

// Service is a bookable offering from the external catalog
type Service struct {
	ID              int64
	Name            string
	DurationMinutes int
}

// Slot is a fixed time window for one service, capacity 1
type Slot struct {
	ID        int64
	ServiceID int64
	StartAt   time.Time
	EndAt     time.Time
}

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment binds a slot to the conversation that booked it
type Appointment struct {
	ID          int64
	SlotID      int64
	ChatID      int64
	Status      AppointmentStatus
	CreatedAt   time.Time
	CancelledAt *time.Time
}

// Booking is an appointment with the service and slot details needed for rendering
type Booking struct {
	Appointment Appointment
	Service     Service
	Slot        Slot
}

// BookingConfirmed is announced to operator channels after a successful confirm
type BookingConfirmed struct {
	AppointmentID int64
	ServiceName   string
	StartAt       time.Time
	EndAt         time.Time
	ChatID        int64
}

// ConfirmedEvent builds the operator announcement for b
func (b *Booking) ConfirmedEvent() BookingConfirmed {
	return BookingConfirmed{
		AppointmentID: b.Appointment.ID,
		ServiceName:   b.Service.Name,
		StartAt:       b.Slot.StartAt,
		EndAt:         b.Slot.EndAt,
		ChatID:        b.Appointment.ChatID,
	}
}

// ChatKind mirrors Telegram chat types
type ChatKind string

const (
	ChatPrivate    ChatKind = "private"
	ChatGroup      ChatKind = "group"
	ChatSupergroup ChatKind = "supergroup"
	ChatChannel    ChatKind = "channel"
)

// State is the position of a conversation in the booking flow
type State string

const (
	StateIdle                State = "idle"
	StateAwaitingDate        State = "awaiting_date"
	StateSlotListDisplayed   State = "slot_list"
	StatePendingConfirmation State = "pending_confirmation"
	StateConfirmed           State = "confirmed"
	StateCancelled           State = "cancelled"
)

// Session is the per-conversation in-progress selection
type Session struct {
	ChatID          int64
	State           State
	ServiceID       int64
	Date            string // YYYY-MM-DD
	SlotID          int64
	PromptMessageID int // message carrying the confirm/cancel buttons for SlotID
	UpdatedAt       time.Time
}

// Reset drops the in-progress selection and moves the session to state
func (s *Session) Reset(state State) {
	s.State = state
	s.ServiceID = 0
	s.Date = ""
	s.SlotID = 0
	s.PromptMessageID = 0
}

func (s *Session) String() string {
	return fmt.Sprintf("chat=%d state=%s service=%d date=%s slot=%d", s.ChatID, s.State, s.ServiceID, s.Date, s.SlotID)
}
