package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("HANDOFF_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/slots")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultCutoffMinutes, cfg.CutoffMinutes)
	assert.Equal(t, DefaultPageSize, cfg.SlotPageSize)
	assert.Equal(t, "https://t.me", cfg.PlatformHost)
	assert.Equal(t, "postgres", cfg.StorageBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Minute, cfg.HandoffTokenTTL)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.True(t, cfg.MigrateOnStart)
	assert.Empty(t, cfg.OperatorChatIDs)
	assert.Empty(t, cfg.OperatorEmails)
}

func TestLoad_OverridesAndLists(t *testing.T) {
	setRequired(t)
	t.Setenv("CUTOFF_MINUTES", "45")
	t.Setenv("OPERATOR_CHAT_IDS", "-1001, 42 ,")
	t.Setenv("OPERATOR_EMAILS", "ops@example.com,desk@example.com")
	t.Setenv("STORAGE_BACKEND", "Memory")
	t.Setenv("TIMEZONE", "Europe/Warsaw")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.CutoffMinutes)
	assert.Equal(t, []int64{-1001, 42}, cfg.OperatorChatIDs)
	assert.Equal(t, []string{"ops@example.com", "desk@example.com"}, cfg.OperatorEmails)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "Europe/Warsaw", cfg.Location().String())
}

func TestLoad_NegativeCutoffFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("CUTOFF_MINUTES", "-5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultCutoffMinutes, cfg.CutoffMinutes)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("HANDOFF_SECRET", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, err.Error(), "HANDOFF_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_BadOperatorChatID(t *testing.T) {
	setRequired(t)
	t.Setenv("OPERATOR_CHAT_IDS", "ops-room")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ops-room")
}
