package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"slot-bot/events"
	"slot-bot/i18n"
	"slot-bot/types"
)

// handleStart greets the user, or jumps straight to the date step when the
// chat was opened through a book_<id> deep link.
func (h *Handler) handleStart(ctx context.Context, t *turn, ev events.Start) {
	if ev.ServiceID > 0 {
		h.handleServiceSelected(ctx, t, ev.ServiceID)
		return
	}
	t.sess.Reset(types.StateIdle)
	h.save(ctx, t)
	h.send(t, t.t(i18n.Welcome), nil)
	h.send(t, t.t(i18n.ChooseLanguage), languageKeyboard())
}

func (h *Handler) handleBook(ctx context.Context, t *turn) {
	t.sess.Reset(types.StateIdle)
	h.save(ctx, t)

	services, err := h.catalog.Services(ctx)
	if err != nil {
		h.log.Error("list services", zap.Int64("chat_id", t.ChatID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
		return
	}
	if len(services) == 0 {
		h.reply(t, t.t(i18n.NoServices), nil)
		return
	}
	h.reply(t, t.t(i18n.ChooseService), servicesKeyboard(services))
}

func (h *Handler) handleMy(ctx context.Context, t *turn) {
	list, err := h.bookings.Appointments(ctx, t.ChatID, h.opts.MyLimit)
	if err != nil {
		h.log.Error("list appointments", zap.Int64("chat_id", t.ChatID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
		return
	}
	if len(list) == 0 {
		h.reply(t, t.t(i18n.MyEmpty), nil)
		return
	}

	var b strings.Builder
	b.WriteString(t.t(i18n.MyHeader))
	for _, item := range list {
		status := t.t(i18n.StatusConfirmed)
		if item.Appointment.Status == types.StatusCancelled {
			status = t.t(i18n.StatusCancelled)
		}
		b.WriteString("\n")
		b.WriteString(t.t(i18n.MyItem, item.Appointment.ID, item.Service.Name, h.slotTime(item.Slot), status))
	}
	h.reply(t, b.String(), appointmentsKeyboard(t, list))
}

// handleLanguage stores an explicit choice. An unsupported code keeps the
// current locale and says so.
func (h *Handler) handleLanguage(ctx context.Context, t *turn, ev events.LanguageChangeRequested) {
	locale, err := h.locales.SetPreference(ctx, t.ChatID, ev.Code)
	if errors.Is(err, i18n.ErrUnsupportedLanguage) {
		h.reply(t, t.t(i18n.LanguageUnsupported, ev.Code), languageKeyboard())
		return
	}
	if err != nil {
		h.log.Error("set language", zap.Int64("chat_id", t.ChatID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
		return
	}
	t.locale = locale
	h.log.Info("language set", zap.Int64("chat_id", t.ChatID), zap.String("locale", string(locale)))
	h.reply(t, t.t(i18n.LanguageSet), nil)
}

// slotTime renders "2006-01-02 15:04–15:04" in the configured zone.
func (h *Handler) slotTime(s types.Slot) string {
	return formatRange(s.StartAt, s.EndAt, h.opts.Location)
}

func formatRange(start, end time.Time, loc *time.Location) string {
	return start.In(loc).Format("2006-01-02 15:04") + "–" + end.In(loc).Format("15:04")
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func serviceLabel(s types.Service) string {
	return s.Name + " · " + strconv.Itoa(s.DurationMinutes) + "′"
}
