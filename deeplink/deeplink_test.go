package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"slot-bot/types"
)

func TestShouldRedirect(t *testing.T) {
	assert.False(t, ShouldRedirect(types.ChatPrivate))
	assert.True(t, ShouldRedirect(types.ChatGroup))
	assert.True(t, ShouldRedirect(types.ChatSupergroup))
	assert.True(t, ShouldRedirect(types.ChatChannel))
}

func TestBuildRedirectLink(t *testing.T) {
	assert.Equal(t, "https://t.me/slot_bot?start=book_5", BuildRedirectLink("https://t.me", "slot_bot", 5))
	assert.Equal(t, "https://t.me/slot_bot?start=book_5", BuildRedirectLink("https://t.me/", "@slot_bot", 5))
}

func TestParseStartPayload(t *testing.T) {
	id, ok := ParseStartPayload("book_42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "book_", "book_abc", "bookx_42", "book_-1", "book_4 2", "book_0", "42", "book_99999999999999999999"} {
		_, ok := ParseStartPayload(bad)
		assert.False(t, ok, bad)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	id, ok := ParseStartPayload(Payload(17))
	assert.True(t, ok)
	assert.Equal(t, int64(17), id)
}
