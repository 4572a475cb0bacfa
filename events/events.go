// Package events decodes inbound commands, button callbacks and calendar
// returns into a closed set of typed events. Nothing past this package looks
// at raw callback strings.
package events

import (
	"strconv"
	"strings"

	"slot-bot/deeplink"
	"slot-bot/types"
)

// Inbound is one decoded event together with the chat it came from.
type Inbound struct {
	ChatID     int64
	ChatKind   types.ChatKind
	LocaleHint string
	// MessageID is the message carrying the pressed button, 0 for commands
	// and calendar returns.
	MessageID  int
	CallbackID string
	Event      Event
}

// Event is implemented only by the types in this package.
type Event interface {
	Kind() string
	event()
}

// Start is /start, optionally carrying a book_<id> deep-link payload.
type Start struct {
	ServiceID int64
}

// BookRequested is /book.
type BookRequested struct{}

// MyAppointmentsRequested is /my.
type MyAppointmentsRequested struct{}

// LanguagePrompt is /lang without an argument.
type LanguagePrompt struct{}

type ServiceSelected struct {
	ServiceID int64
}

// DateConfirmed comes back from the calendar.
type DateConfirmed struct {
	Date      string
	ServiceID int64
}

type SlotSelected struct {
	SlotID int64
}

type ConfirmRequested struct {
	SlotID int64
}

// CancelRequested carries a slot id while a confirmation is pending and an
// appointment id otherwise; the handler decides which.
type CancelRequested struct {
	ID int64
}

type LanguageChangeRequested struct {
	Code string
}

// InvalidPayload is a calendar return that failed to parse. Field names the
// missing or malformed field: "date", "serviceId" or "body" for unreadable input.
type InvalidPayload struct {
	Field string
}

// GenericError is anything the decoder did not recognise.
type GenericError struct {
	Raw string
}

func (Start) Kind() string                   { return "start" }
func (BookRequested) Kind() string           { return "book" }
func (MyAppointmentsRequested) Kind() string { return "my" }
func (LanguagePrompt) Kind() string          { return "lang_prompt" }
func (ServiceSelected) Kind() string         { return "service_selected" }
func (DateConfirmed) Kind() string           { return "date_confirmed" }
func (SlotSelected) Kind() string            { return "slot_selected" }
func (ConfirmRequested) Kind() string        { return "confirm_requested" }
func (CancelRequested) Kind() string         { return "cancel_requested" }
func (LanguageChangeRequested) Kind() string { return "language_change" }
func (InvalidPayload) Kind() string          { return "invalid_payload" }
func (GenericError) Kind() string            { return "generic_error" }

func (Start) event()                   {}
func (BookRequested) event()           {}
func (MyAppointmentsRequested) event() {}
func (LanguagePrompt) event()          {}
func (ServiceSelected) event()         {}
func (DateConfirmed) event()           {}
func (SlotSelected) event()            {}
func (ConfirmRequested) event()        {}
func (CancelRequested) event()         {}
func (LanguageChangeRequested) event() {}
func (InvalidPayload) event()          {}
func (GenericError) event()            {}

// Callback data prefixes shared with the keyboards that emit them.
const (
	PrefixService = "service_"
	PrefixSlot    = "slot_"
	PrefixConfirm = "confirm_"
	PrefixCancel  = "cancel_"
	PrefixLang    = "lang:"
)

func ServiceData(id int64) string { return PrefixService + strconv.FormatInt(id, 10) }
func SlotData(id int64) string    { return PrefixSlot + strconv.FormatInt(id, 10) }
func ConfirmData(id int64) string { return PrefixConfirm + strconv.FormatInt(id, 10) }
func CancelData(id int64) string  { return PrefixCancel + strconv.FormatInt(id, 10) }
func LangData(code string) string { return PrefixLang + code }

// DecodeAction maps inline-button callback data onto an event.
func DecodeAction(data string) Event {
	switch {
	case strings.HasPrefix(data, PrefixService):
		if id, ok := parseID(data[len(PrefixService):]); ok {
			return ServiceSelected{ServiceID: id}
		}
	case strings.HasPrefix(data, PrefixSlot):
		if id, ok := parseID(data[len(PrefixSlot):]); ok {
			return SlotSelected{SlotID: id}
		}
	case strings.HasPrefix(data, PrefixConfirm):
		if id, ok := parseID(data[len(PrefixConfirm):]); ok {
			return ConfirmRequested{SlotID: id}
		}
	case strings.HasPrefix(data, PrefixCancel):
		if id, ok := parseID(data[len(PrefixCancel):]); ok {
			return CancelRequested{ID: id}
		}
	case strings.HasPrefix(data, PrefixLang):
		if code := data[len(PrefixLang):]; code != "" {
			return LanguageChangeRequested{Code: code}
		}
	}
	return GenericError{Raw: data}
}

// DecodeCommand maps a bot command (without the slash) and its arguments onto
// an event. Unknown commands decode to GenericError.
func DecodeCommand(command, args string) Event {
	args = strings.TrimSpace(args)
	switch command {
	case "start":
		id, _ := deeplink.ParseStartPayload(args)
		return Start{ServiceID: id}
	case "book":
		return BookRequested{}
	case "my":
		return MyAppointmentsRequested{}
	case "lang":
		if args == "" {
			return LanguagePrompt{}
		}
		return LanguageChangeRequested{Code: strings.Fields(args)[0]}
	}
	return GenericError{Raw: "/" + command}
}

func parseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
