package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"slot-bot/types"
)

// Memory is an in-process stand-in for Postgres, used with STORAGE_BACKEND=memory
// and in tests. The bySlot index plays the role of the UNIQUE (slot_id) constraint.
type Memory struct {
	mu           sync.Mutex
	services     map[int64]types.Service
	slots        map[int64]types.Slot
	appointments map[int64]*types.Appointment
	bySlot       map[int64]int64
	nextAppt     int64
}

func NewMemory() *Memory {
	return &Memory{
		services:     make(map[int64]types.Service),
		slots:        make(map[int64]types.Slot),
		appointments: make(map[int64]*types.Appointment),
		bySlot:       make(map[int64]int64),
	}
}

func (m *Memory) AddService(svc types.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[svc.ID] = svc
}

func (m *Memory) AddSlot(slot types.Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot.ID] = slot
}

func (m *Memory) RemoveSlot(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, id)
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) GetService(_ context.Context, id int64) (*types.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	svc, ok := m.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return &svc, nil
}

func (m *Memory) ListServices(context.Context) ([]types.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Service, 0, len(m.services))
	for _, svc := range m.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) ListFreeSlots(_ context.Context, serviceID int64, from, to time.Time, limit int) ([]types.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Slot
	for _, s := range m.slots {
		if s.ServiceID != serviceID || s.StartAt.Before(from) || !s.StartAt.Before(to) {
			continue
		}
		if _, booked := m.bySlot[s.ID]; booked {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ConfirmAppointment(_ context.Context, slotID, chatID int64) (*types.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[slotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	if _, taken := m.bySlot[slotID]; taken {
		return nil, ErrSlotTaken
	}
	m.nextAppt++
	appt := &types.Appointment{
		ID:        m.nextAppt,
		SlotID:    slotID,
		ChatID:    chatID,
		Status:    types.StatusConfirmed,
		CreatedAt: time.Now().UTC(),
	}
	m.appointments[appt.ID] = appt
	m.bySlot[slotID] = appt.ID
	return m.bookingLocked(appt, slot), nil
}

func (m *Memory) CancelAppointment(_ context.Context, appointmentID, chatID int64) (*types.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appointments[appointmentID]
	if !ok || appt.ChatID != chatID {
		return nil, ErrAppointmentNotFound
	}
	if appt.Status != types.StatusCancelled {
		now := time.Now().UTC()
		appt.Status = types.StatusCancelled
		appt.CancelledAt = &now
	}
	return m.bookingLocked(appt, m.slots[appt.SlotID]), nil
}

func (m *Memory) ListAppointments(_ context.Context, chatID int64, limit int) ([]types.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Booking
	for _, appt := range m.appointments {
		if appt.ChatID == chatID {
			out = append(out, *m.bookingLocked(appt, m.slots[appt.SlotID]))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Slot.StartAt.Equal(out[j].Slot.StartAt) {
			return out[i].Slot.StartAt.After(out[j].Slot.StartAt)
		}
		return out[i].Appointment.ID > out[j].Appointment.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountAppointments returns how many appointments reference slotID, by status.
func (m *Memory) CountAppointments(slotID int64) map[types.AppointmentStatus]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[types.AppointmentStatus]int)
	for _, appt := range m.appointments {
		if appt.SlotID == slotID {
			counts[appt.Status]++
		}
	}
	return counts
}

func (m *Memory) bookingLocked(appt *types.Appointment, slot types.Slot) *types.Booking {
	return &types.Booking{
		Appointment: *appt,
		Service:     m.services[slot.ServiceID],
		Slot:        slot,
	}
}
