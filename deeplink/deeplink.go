// Package deeplink moves a booking started in a group chat into a private chat.
package deeplink

import (
	"fmt"
	"strconv"
	"strings"

	"slot-bot/types"
)

const payloadPrefix = "book_"

// ShouldRedirect reports whether the calendar cannot be opened in this kind of
// chat and the user has to continue privately.
func ShouldRedirect(kind types.ChatKind) bool {
	return kind != types.ChatPrivate
}

// Payload is the /start argument that pre-selects serviceID.
func Payload(serviceID int64) string {
	return payloadPrefix + strconv.FormatInt(serviceID, 10)
}

// BuildRedirectLink returns <host>/<bot>?start=book_<serviceID>.
func BuildRedirectLink(host, botIdentity string, serviceID int64) string {
	host = strings.TrimRight(host, "/")
	botIdentity = strings.TrimPrefix(botIdentity, "@")
	return fmt.Sprintf("%s/%s?start=%s", host, botIdentity, Payload(serviceID))
}

// ParseStartPayload extracts the service id from a /start argument. Anything
// other than book_ followed by digits means no pre-selection.
func ParseStartPayload(payload string) (int64, bool) {
	digits, ok := strings.CutPrefix(strings.TrimSpace(payload), payloadPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
