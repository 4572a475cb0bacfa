// Package handoff hands the date step to the calendar picker and turns its
// answer back into a DateConfirmed event.
package handoff

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"slot-bot/booking"
)

const (
	FieldDate      = "date"
	FieldServiceID = "serviceId"
	FieldBody      = "body"
)

var ErrInvalidPayload = errors.New("handoff: invalid payload")

// InvalidPayloadError names the field that made a return payload unusable.
type InvalidPayloadError struct {
	Field  string
	Reason string
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("handoff: invalid payload: %s %s", e.Field, e.Reason)
}

func (e *InvalidPayloadError) Is(target error) bool { return target == ErrInvalidPayload }

// Return is a parsed picker answer.
type Return struct {
	Date      string
	ServiceID int64
}

type rawReturn struct {
	Date      *string         `json:"date"`
	ServiceID json.RawMessage `json:"serviceId"`
}

// ParseReturnPayload decodes {"date": "YYYY-MM-DD", "serviceId": 5}. The
// service id may also arrive as a digit string. The date is checked first.
func ParseReturnPayload(raw []byte) (Return, error) {
	var in rawReturn
	if err := json.Unmarshal(raw, &in); err != nil {
		return Return{}, &InvalidPayloadError{Field: FieldBody, Reason: "is not a JSON object"}
	}

	if in.Date == nil || strings.TrimSpace(*in.Date) == "" {
		return Return{}, &InvalidPayloadError{Field: FieldDate, Reason: "is missing"}
	}
	date := strings.TrimSpace(*in.Date)
	if _, err := time.Parse(booking.DateLayout, date); err != nil {
		return Return{}, &InvalidPayloadError{Field: FieldDate, Reason: "is not YYYY-MM-DD"}
	}

	serviceID, err := parseServiceID(in.ServiceID)
	if err != nil {
		return Return{}, err
	}
	return Return{Date: date, ServiceID: serviceID}, nil
}

func parseServiceID(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, &InvalidPayloadError{Field: FieldServiceID, Reason: "is missing"}
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, &InvalidPayloadError{Field: FieldServiceID, Reason: "is not a number"}
		}
		s = strings.TrimSpace(s)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &InvalidPayloadError{Field: FieldServiceID, Reason: "is not a number"}
	}
	return id, nil
}
