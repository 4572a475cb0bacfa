package i18n

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot-bot/storage"
)

func newTestResolver(t *testing.T) (*Resolver, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := storage.NewSessionStore(storage.NewRedisClient(mr.Addr(), "", 0), 0)
	return NewResolver(store, "en", nil), mr
}

func TestParse(t *testing.T) {
	cases := map[string]Locale{
		"en":    English,
		"en-US": English,
		"RU":    Russian,
		"ru_RU": Russian,
		"he":    Hebrew,
		"iw":    Hebrew,
		" he ":  Hebrew,
	}
	for in, want := range cases {
		got, ok := Parse(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "de", "fr-FR", "english"} {
		_, ok := Parse(in)
		assert.False(t, ok, in)
	}
}

func TestResolve_HintThenDefault(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	assert.Equal(t, Russian, r.Resolve(ctx, 1, "ru-RU"))
	assert.Equal(t, English, r.Resolve(ctx, 1, "de"))
	assert.Equal(t, English, r.Resolve(ctx, 1, ""))
}

func TestResolve_HintIsNotPersisted(t *testing.T) {
	r, mr := newTestResolver(t)
	ctx := context.Background()

	r.Resolve(ctx, 7, "ru")
	assert.False(t, mr.Exists("lang:7"))
	assert.Equal(t, English, r.Resolve(ctx, 7, ""))
}

func TestSetPreference_PersistsAcrossInteractions(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	l, err := r.SetPreference(ctx, 42, "he")
	require.NoError(t, err)
	assert.Equal(t, Hebrew, l)

	// a later, unrelated interaction carries an English client hint
	assert.Equal(t, Hebrew, r.Resolve(ctx, 42, "en-GB"))
	assert.Equal(t, English, r.Resolve(ctx, 43, "en-GB"))
}

func TestSetPreference_UnsupportedKeepsCurrent(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	_, err := r.SetPreference(ctx, 42, "ru")
	require.NoError(t, err)

	_, err = r.SetPreference(ctx, 42, "klingon")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Equal(t, Russian, r.Resolve(ctx, 42, ""))
}

func TestResolve_StoreDownFallsBackToHint(t *testing.T) {
	r, mr := newTestResolver(t)
	mr.SetError("LOADING")

	assert.Equal(t, Hebrew, r.Resolve(context.Background(), 1, "iw"))
}

func TestNewResolver_UnsupportedFallback(t *testing.T) {
	r := NewResolver(nil, "xx", nil)
	assert.Equal(t, English, r.Default())
}

func TestT(t *testing.T) {
	assert.Equal(t, "✅ Confirm", T(English, ConfirmButton))
	assert.Equal(t, "📋 התורים שלך:", T(Hebrew, MyHeader))
	assert.Contains(t, T(Russian, NoSlots, "Стрижка", "2025-05-01"), "2025-05-01")
	// missing locale falls back to English
	assert.Equal(t, T(English, GenericError), T(Locale("de"), GenericError))
}

func TestCatalogComplete(t *testing.T) {
	for key := range catalog[English] {
		for _, l := range Supported {
			_, ok := catalog[l][key]
			assert.True(t, ok, "%s missing %s", l, key)
		}
	}
}
