// Package i18n resolves the per-conversation locale and renders messages.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"slot-bot/logger"
)

type Locale string

const (
	English Locale = "en"
	Russian Locale = "ru"
	Hebrew  Locale = "he"
)

// Supported lists locales in the order shown on the language keyboard.
var Supported = []Locale{English, Russian, Hebrew}

var names = map[Locale]string{
	English: "🇬🇧 English",
	Russian: "🇷🇺 Русский",
	Hebrew:  "🇮🇱 עברית",
}

var ErrUnsupportedLanguage = errors.New("i18n: unsupported language")

// Name is the label shown on the language keyboard.
func Name(l Locale) string { return names[l] }

// Parse maps a client language code ("en-US", "iw", "RU") onto a supported locale.
func Parse(code string) (Locale, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	if code == "iw" {
		code = "he"
	}
	l := Locale(code)
	if _, ok := catalog[l]; !ok {
		return "", false
	}
	return l, true
}

// T renders key in locale l, falling back to English for missing entries.
func T(l Locale, key Key, args ...any) string {
	msg, ok := catalog[l][key]
	if !ok {
		msg = catalog[English][key]
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// PreferenceStore persists explicit locale choices per conversation.
type PreferenceStore interface {
	GetLocale(ctx context.Context, chatID int64) (string, error)
	SaveLocale(ctx context.Context, chatID int64, locale string) error
}

// Resolver picks the locale for a conversation: stored preference first, then
// the client hint, then the default.
type Resolver struct {
	store    PreferenceStore
	fallback Locale
	log      *zap.Logger
}

func NewResolver(store PreferenceStore, fallback string, log *zap.Logger) *Resolver {
	l, ok := Parse(fallback)
	if !ok {
		l = English
	}
	return &Resolver{store: store, fallback: l, log: logger.OrNop(log)}
}

// Resolve never fails; a store error is logged and resolution continues with the hint.
func (r *Resolver) Resolve(ctx context.Context, chatID int64, hint string) Locale {
	stored, err := r.store.GetLocale(ctx, chatID)
	if err != nil {
		r.log.Warn("locale lookup failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	if l, ok := Parse(stored); ok {
		return l
	}
	if l, ok := Parse(hint); ok {
		return l
	}
	return r.fallback
}

// SetPreference stores an explicit choice. An unsupported code returns
// ErrUnsupportedLanguage and leaves the stored preference untouched.
func (r *Resolver) SetPreference(ctx context.Context, chatID int64, code string) (Locale, error) {
	l, ok := Parse(code)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	if err := r.store.SaveLocale(ctx, chatID, string(l)); err != nil {
		return "", fmt.Errorf("i18n: save preference: %w", err)
	}
	return l, nil
}

func (r *Resolver) Default() Locale { return r.fallback }
