package handoff

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"slot-bot/booking"
	"slot-bot/deeplink"
	"slot-bot/events"
	"slot-bot/i18n"
	"slot-bot/logger"
)

const maxReturnBody = 4 << 10

//go:embed picker.html
var pickerHTML string

var pickerTmpl = template.Must(template.New("picker").Parse(pickerHTML))

// Submitter queues an inbound event for its conversation.
type Submitter interface {
	Submit(ctx context.Context, in events.Inbound) error
}

type Recorder interface {
	ObserveHandoffReturn(status string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveHandoffReturn(string) {}

// Handler serves the picker page and accepts its answer.
type Handler struct {
	signer   *Signer
	submit   Submitter
	recorder Recorder
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

func NewHandler(signer *Signer, submit Submitter, recorder Recorder, loc *time.Location, log *zap.Logger) *Handler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		signer:   signer,
		submit:   submit,
		recorder: recorder,
		loc:      loc,
		now:      time.Now,
		log:      logger.OrNop(log),
	}
}

// WithClock replaces the clock used for the picker's earliest date.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

type pickerPage struct {
	Lang      string
	Dir       string
	Title     string
	Submit    string
	Done      string
	MinDate   string
	ServiceID int64
	ReturnURL string
}

// Picker renders the date picker for GET /picker?token=...
func (h *Handler) Picker(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	st, err := h.verify(token)
	if err != nil {
		http.Error(w, "invalid or expired link", http.StatusUnauthorized)
		return
	}

	locale, ok := i18n.Parse(st.Locale)
	if !ok {
		locale = i18n.English
	}
	dir := "ltr"
	if locale == i18n.Hebrew {
		dir = "rtl"
	}
	page := pickerPage{
		Lang:      string(locale),
		Dir:       dir,
		Title:     i18n.T(locale, i18n.PickerTitle),
		Submit:    i18n.T(locale, i18n.PickerSubmit),
		Done:      i18n.T(locale, i18n.PickerDone),
		MinDate:   h.now().In(h.loc).Format(booking.DateLayout),
		ServiceID: st.ServiceID,
		ReturnURL: "/handoff/return?token=" + url.QueryEscape(token),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pickerTmpl.Execute(w, page); err != nil {
		h.log.Error("render picker", zap.Error(err))
	}
}

// Return handles POST /handoff/return?token=... Bad tokens get 401 and no
// event; a readable token with a bad payload, including a serviceId other
// than the one the link was issued for, still reaches the chat as
// InvalidPayload so the user sees which field was wrong.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	st, err := h.verify(r.URL.Query().Get("token"))
	if err != nil {
		h.recorder.ObserveHandoffReturn("unauthorized")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		return
	}

	in := events.Inbound{ChatID: st.ChatID, ChatKind: st.ChatKind, LocaleHint: st.Locale}
	status := http.StatusAccepted
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReturnBody))
	var ret Return
	if err == nil {
		ret, err = ParseReturnPayload(body)
		if err == nil && st.ServiceID != 0 && ret.ServiceID != st.ServiceID {
			err = &InvalidPayloadError{Field: FieldServiceID, Reason: "does not match the link"}
		}
	} else {
		err = &InvalidPayloadError{Field: FieldBody, Reason: "is too large"}
	}

	var invalid *InvalidPayloadError
	switch {
	case errors.As(err, &invalid):
		in.Event = events.InvalidPayload{Field: invalid.Field}
		status = http.StatusUnprocessableEntity
		h.log.Info("invalid handoff payload", zap.Int64("chat_id", st.ChatID), zap.String("field", invalid.Field))
	default:
		in.Event = events.DateConfirmed{Date: ret.Date, ServiceID: ret.ServiceID}
	}

	if err := h.submit.Submit(r.Context(), in); err != nil {
		h.recorder.ObserveHandoffReturn("unavailable")
		h.log.Warn("handoff submit failed", zap.Int64("chat_id", st.ChatID), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "try again later"})
		return
	}

	if invalid != nil {
		h.recorder.ObserveHandoffReturn("invalid_payload")
		writeJSON(w, status, map[string]string{"error": invalid.Error(), "field": invalid.Field})
		return
	}
	h.recorder.ObserveHandoffReturn("accepted")
	writeJSON(w, status, map[string]string{"status": "accepted"})
}

// verify accepts only tokens issued for private chats.
func (h *Handler) verify(token string) (State, error) {
	if token == "" {
		return State{}, ErrInvalidToken
	}
	st, err := h.signer.Verify(token)
	if err != nil {
		return State{}, err
	}
	if deeplink.ShouldRedirect(st.ChatKind) {
		return State{}, ErrInvalidToken
	}
	return st, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
