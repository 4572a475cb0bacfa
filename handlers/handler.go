// Package handlers runs the per-conversation booking state machine on top of
// decoded events and renders every outcome back into the chat.
package handlers

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"slot-bot/events"
	"slot-bot/handoff"
	"slot-bot/i18n"
	"slot-bot/logger"
	"slot-bot/types"
)

// Sender is the part of *tgbotapi.BotAPI the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Sessions interface {
	Get(ctx context.Context, chatID int64) (*types.Session, error)
	Save(ctx context.Context, sess *types.Session) error
}

type Locales interface {
	Resolve(ctx context.Context, chatID int64, hint string) i18n.Locale
	SetPreference(ctx context.Context, chatID int64, code string) (i18n.Locale, error)
}

type Catalog interface {
	Services(ctx context.Context) ([]types.Service, error)
	Service(ctx context.Context, id int64) (*types.Service, error)
	ListBookable(ctx context.Context, serviceID int64, date string, cutoffMinutes int) ([]types.Slot, error)
}

type Bookings interface {
	Confirm(ctx context.Context, slotID, chatID int64) (*types.Booking, error)
	Cancel(ctx context.Context, appointmentID, chatID int64) (*types.Booking, error)
	Appointments(ctx context.Context, chatID int64, limit int) ([]types.Booking, error)
}

type PickerLinks interface {
	PickerURL(base string, st handoff.State) (string, error)
}

type Options struct {
	BotUsername     string
	PlatformHost    string
	CalendarBaseURL string
	CutoffMinutes   int
	Location        *time.Location
	MyLimit         int
}

type Handler struct {
	bot      Sender
	sessions Sessions
	locales  Locales
	catalog  Catalog
	bookings Bookings
	picker   PickerLinks
	opts     Options
	log      *zap.Logger
}

func New(bot Sender, sessions Sessions, locales Locales, catalog Catalog, bookings Bookings, picker PickerLinks, opts Options, log *zap.Logger) *Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PlatformHost == "" {
		opts.PlatformHost = "https://t.me"
	}
	if opts.MyLimit <= 0 {
		opts.MyLimit = 10
	}
	return &Handler{
		bot:      bot,
		sessions: sessions,
		locales:  locales,
		catalog:  catalog,
		bookings: bookings,
		picker:   picker,
		opts:     opts,
		log:      logger.OrNop(log),
	}
}

// turn is the context of one event: who, in which language, at which step.
type turn struct {
	events.Inbound
	locale   i18n.Locale
	sess     *types.Session
	answered bool
	shown    int // message holding the latest reply, 0 if none was delivered
}

func (t *turn) t(key i18n.Key, args ...any) string {
	return i18n.T(t.locale, key, args...)
}

// Handle processes one event. It never returns an error: every failure is
// rendered to the chat and leaves the session in a state the user can
// continue from.
func (h *Handler) Handle(ctx context.Context, in events.Inbound) {
	t := &turn{Inbound: in, locale: h.locales.Resolve(ctx, in.ChatID, in.LocaleHint)}
	defer h.answer(t, "")

	sess, err := h.sessions.Get(ctx, in.ChatID)
	if err != nil {
		h.log.Error("load session", zap.Int64("chat_id", in.ChatID), zap.Error(err))
		h.reply(t, t.t(i18n.GenericError), nil)
		return
	}
	t.sess = sess

	h.log.Debug("event",
		zap.Int64("chat_id", in.ChatID),
		zap.String("event", in.Event.Kind()),
		zap.String("state", string(sess.State)),
	)

	switch ev := in.Event.(type) {
	case events.Start:
		h.handleStart(ctx, t, ev)
	case events.BookRequested:
		h.handleBook(ctx, t)
	case events.MyAppointmentsRequested:
		h.handleMy(ctx, t)
	case events.LanguagePrompt:
		h.reply(t, t.t(i18n.ChooseLanguage), languageKeyboard())
	case events.LanguageChangeRequested:
		h.handleLanguage(ctx, t, ev)
	case events.ServiceSelected:
		h.handleServiceSelected(ctx, t, ev.ServiceID)
	case events.DateConfirmed:
		h.handleDateConfirmed(ctx, t, ev)
	case events.InvalidPayload:
		h.handleInvalidPayload(ctx, t, ev)
	case events.SlotSelected:
		h.handleSlotSelected(ctx, t, ev)
	case events.ConfirmRequested:
		h.handleConfirm(ctx, t, ev)
	case events.CancelRequested:
		h.handleCancel(ctx, t, ev)
	default:
		h.log.Info("unrecognised input", zap.Int64("chat_id", in.ChatID), zap.Any("event", in.Event))
		h.reply(t, t.t(i18n.GenericError), nil)
	}
}

func (h *Handler) save(ctx context.Context, t *turn) {
	if err := h.sessions.Save(ctx, t.sess); err != nil {
		h.log.Warn("save session", zap.Int64("chat_id", t.ChatID), zap.Error(err))
	}
}
