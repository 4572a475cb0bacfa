package handlers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"slot-bot/booking"
	"slot-bot/deeplink"
	"slot-bot/events"
	"slot-bot/handoff"
	"slot-bot/i18n"
	"slot-bot/types"
)

// handleServiceSelected opens the calendar in private chats. Anywhere else
// the calendar cannot be shown, so the user gets a link that continues the
// booking privately with the service already chosen.
func (h *Handler) handleServiceSelected(ctx context.Context, t *turn, serviceID int64) {
	svc, err := h.catalog.Service(ctx, serviceID)
	if errors.Is(err, booking.ErrServiceNotFound) {
		h.reply(t, t.t(i18n.UnknownService), nil)
		return
	}
	if err != nil {
		h.log.Error("load service", zap.Int64("chat_id", t.ChatID), zap.Int64("service_id", serviceID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
		return
	}

	if deeplink.ShouldRedirect(t.ChatKind) {
		link := deeplink.BuildRedirectLink(h.opts.PlatformHost, h.opts.BotUsername, svc.ID)
		h.log.Info("redirecting to private chat", zap.Int64("chat_id", t.ChatID), zap.Int64("service_id", svc.ID))
		h.reply(t, t.t(i18n.GroupRedirect, svc.Name), linkKeyboard(t.t(i18n.OpenPrivateChat), link))
		return
	}

	t.sess.Reset(types.StateAwaitingDate)
	t.sess.ServiceID = svc.ID
	h.save(ctx, t)
	h.promptDate(t, svc, t.t(i18n.PickDate, svc.Name))
}

// promptDate renders text with a button opening the calendar for svc.
func (h *Handler) promptDate(t *turn, svc *types.Service, text string) {
	link, err := h.picker.PickerURL(h.opts.CalendarBaseURL, handoff.State{
		ChatID:    t.ChatID,
		ChatKind:  t.ChatKind,
		ServiceID: svc.ID,
		Locale:    string(t.locale),
	})
	if err != nil {
		h.log.Error("build picker url", zap.Int64("chat_id", t.ChatID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
		return
	}
	h.reply(t, text, linkKeyboard(t.t(i18n.OpenCalendar), link))
}

func (h *Handler) handleDateConfirmed(ctx context.Context, t *turn, ev events.DateConfirmed) {
	switch t.sess.State {
	case types.StateAwaitingDate, types.StateSlotListDisplayed, types.StatePendingConfirmation:
	default:
		h.reply(t, t.t(i18n.SessionExpired), nil)
		return
	}

	slots, err := h.catalog.ListBookable(ctx, ev.ServiceID, ev.Date, h.opts.CutoffMinutes)
	switch {
	case errors.Is(err, booking.ErrServiceNotFound):
		h.reply(t, t.t(i18n.UnknownService), nil)
		return
	case errors.Is(err, booking.ErrInvalidDate):
		h.reply(t, t.t(i18n.MissingDate), nil)
		return
	case err != nil:
		h.log.Error("list slots", zap.Int64("chat_id", t.ChatID), zap.Int64("service_id", ev.ServiceID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
		return
	}

	svc, err := h.catalog.Service(ctx, ev.ServiceID)
	if err != nil {
		h.log.Error("load service", zap.Int64("chat_id", t.ChatID), zap.Int64("service_id", ev.ServiceID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
		return
	}

	if len(slots) == 0 {
		t.sess.Reset(types.StateAwaitingDate)
		t.sess.ServiceID = svc.ID
		h.save(ctx, t)
		h.promptDate(t, svc, t.t(i18n.NoSlots, svc.Name, ev.Date))
		return
	}

	t.sess.Reset(types.StateSlotListDisplayed)
	t.sess.ServiceID = svc.ID
	t.sess.Date = ev.Date
	h.save(ctx, t)
	h.reply(t, t.t(i18n.ChooseSlot, svc.Name, ev.Date), slotsKeyboard(slots, h.opts.Location))
}

func (h *Handler) handleInvalidPayload(ctx context.Context, t *turn, ev events.InvalidPayload) {
	key := i18n.InvalidPayload
	switch ev.Field {
	case handoff.FieldDate:
		key = i18n.MissingDate
	case handoff.FieldServiceID:
		key = i18n.MissingServiceID
	}

	if t.sess.State == types.StateAwaitingDate && t.sess.ServiceID != 0 {
		if svc, err := h.catalog.Service(ctx, t.sess.ServiceID); err == nil {
			h.promptDate(t, svc, t.t(key))
			return
		}
	}
	h.reply(t, t.t(key), nil)
}

func (h *Handler) handleSlotSelected(ctx context.Context, t *turn, ev events.SlotSelected) {
	switch t.sess.State {
	case types.StateSlotListDisplayed, types.StatePendingConfirmation:
	default:
		h.reply(t, t.t(i18n.SessionExpired), nil)
		return
	}

	// The list is queried again so a slot that went away since it was shown
	// is caught here rather than at confirmation.
	svc, slots, ok := h.currentSlots(ctx, t)
	if !ok {
		return
	}
	var picked *types.Slot
	for i := range slots {
		if slots[i].ID == ev.SlotID {
			picked = &slots[i]
			break
		}
	}
	if picked == nil {
		h.showSlots(ctx, t, svc, slots, i18n.SlotNotFound)
		return
	}

	h.reply(t, t.t(i18n.ConfirmPrompt, svc.Name, h.slotTime(*picked)), confirmKeyboard(t, picked.ID))
	t.sess.State = types.StatePendingConfirmation
	t.sess.SlotID = picked.ID
	t.sess.PromptMessageID = t.shown
	h.save(ctx, t)
}

// handleConfirm is not gated on the session state: the storage constraint
// decides, so a repeated or redelivered confirm is answered with "taken".
func (h *Handler) handleConfirm(ctx context.Context, t *turn, ev events.ConfirmRequested) {
	b, err := h.bookings.Confirm(ctx, ev.SlotID, t.ChatID)
	switch {
	case err == nil:
		t.sess.Reset(types.StateConfirmed)
		h.save(ctx, t)
		h.reply(t, t.t(i18n.Booked, b.Service.Name, h.slotTime(b.Slot), b.Appointment.ID), nil)
		return
	case errors.Is(err, booking.ErrSlotTaken):
		h.answer(t, t.t(i18n.SlotTaken))
		h.recoverSlotList(ctx, t, i18n.SlotTaken)
	case errors.Is(err, booking.ErrSlotNotFound):
		h.recoverSlotList(ctx, t, i18n.SlotNotFound)
	default:
		h.log.Error("confirm", zap.Int64("chat_id", t.ChatID), zap.Int64("slot_id", ev.SlotID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
	}
}

// recoverSlotList shows msg above a fresh slot list when the session still
// knows the service and date, and msg alone otherwise.
func (h *Handler) recoverSlotList(ctx context.Context, t *turn, msg i18n.Key) {
	if t.sess.ServiceID == 0 || t.sess.Date == "" {
		h.reply(t, t.t(msg), nil)
		return
	}
	svc, slots, ok := h.currentSlots(ctx, t)
	if !ok {
		return
	}
	h.showSlots(ctx, t, svc, slots, msg)
}

// handleCancel drops a pending selection when the button was pressed on the
// confirmation prompt for that slot. Any other cancel_<id> names an
// appointment: slot and appointment ids overlap, so the id alone cannot tell.
func (h *Handler) handleCancel(ctx context.Context, t *turn, ev events.CancelRequested) {
	if isPromptCancel(t, ev.ID) {
		t.sess.Reset(types.StateIdle)
		h.save(ctx, t)
		h.reply(t, t.t(i18n.SelectionDropped), nil)
		return
	}

	b, err := h.bookings.Cancel(ctx, ev.ID, t.ChatID)
	if errors.Is(err, booking.ErrNotFoundOrNotOwned) {
		h.reply(t, t.t(i18n.CancelNotFound), nil)
		return
	}
	if err != nil {
		h.log.Error("cancel", zap.Int64("chat_id", t.ChatID), zap.Int64("appointment_id", ev.ID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
		return
	}

	if t.sess.State == types.StateConfirmed {
		t.sess.Reset(types.StateCancelled)
		h.save(ctx, t)
	}
	h.reply(t, t.t(i18n.AppointmentCanceled, b.Appointment.ID, b.Service.Name, h.slotTime(b.Slot)), nil)
}

func isPromptCancel(t *turn, id int64) bool {
	return t.sess.State == types.StatePendingConfirmation &&
		t.sess.SlotID == id &&
		t.MessageID != 0 &&
		t.MessageID == t.sess.PromptMessageID
}

// currentSlots re-queries the bookable slots for the session's service and
// date. On failure it has already rendered the error.
func (h *Handler) currentSlots(ctx context.Context, t *turn) (*types.Service, []types.Slot, bool) {
	svc, err := h.catalog.Service(ctx, t.sess.ServiceID)
	if errors.Is(err, booking.ErrServiceNotFound) {
		t.sess.Reset(types.StateIdle)
		h.save(ctx, t)
		h.reply(t, t.t(i18n.UnknownService), nil)
		return nil, nil, false
	}
	if err == nil {
		var slots []types.Slot
		slots, err = h.catalog.ListBookable(ctx, svc.ID, t.sess.Date, h.opts.CutoffMinutes)
		if err == nil {
			return svc, slots, true
		}
	}
	h.log.Error("reload slots", zap.Int64("chat_id", t.ChatID), zap.String("session", t.sess.String()), zap.Error(err))
	h.reply(t, t.t(i18n.GenericError), nil)
	return nil, nil, false
}

// showSlots renders msg followed by the slot list and moves the session back
// to SlotListDisplayed. With no slots left it goes back to the calendar.
func (h *Handler) showSlots(ctx context.Context, t *turn, svc *types.Service, slots []types.Slot, msg i18n.Key) {
	if len(slots) == 0 {
		t.sess.Reset(types.StateAwaitingDate)
		t.sess.ServiceID = svc.ID
		h.save(ctx, t)
		h.promptDate(t, svc, t.t(msg)+"\n\n"+t.t(i18n.PickDate, svc.Name))
		return
	}
	t.sess.State = types.StateSlotListDisplayed
	t.sess.SlotID = 0
	t.sess.PromptMessageID = 0
	h.save(ctx, t)
	h.reply(t, t.t(msg)+"\n\n"+t.t(i18n.ChooseSlot, svc.Name, t.sess.Date), slotsKeyboard(slots, h.opts.Location))
}
