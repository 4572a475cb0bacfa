package handlers

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Delivery says how a response reached the chat.
type Delivery int

const (
	Failed Delivery = iota
	Edited
	Sent
)

func (d Delivery) String() string {
	switch d {
	case Edited:
		return "edited"
	case Sent:
		return "sent"
	}
	return "failed"
}

// Telegram error texts after which sending a fresh message is the right move.
var recoverableEdit = []string{
	"message to edit not found",
	"message can't be edited",
	"there is no text in the message to edit",
}

const notModified = "message is not modified"

// reply edits the message that carried the pressed button when there is one,
// and sends a new message otherwise or when the edit cannot be applied.
func (h *Handler) reply(t *turn, text string, markup *tgbotapi.InlineKeyboardMarkup) Delivery {
	if t.MessageID != 0 {
		edit := tgbotapi.NewEditMessageText(t.ChatID, t.MessageID, text)
		edit.ReplyMarkup = markup
		_, err := h.bot.Send(edit)
		switch {
		case err == nil, isEditError(err, notModified):
			t.shown = t.MessageID
			return Edited
		case !isEditError(err, recoverableEdit...):
			h.log.Warn("edit message", zap.Int64("chat_id", t.ChatID), zap.Int("message_id", t.MessageID), zap.Error(err))
			return Failed
		}
		h.log.Debug("edit not possible, sending new message", zap.Int64("chat_id", t.ChatID), zap.Error(err))
	}
	return h.send(t, text, markup)
}

// send always posts a new message.
func (h *Handler) send(t *turn, text string, markup *tgbotapi.InlineKeyboardMarkup) Delivery {
	msg := tgbotapi.NewMessage(t.ChatID, text)
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := h.bot.Send(msg)
	if err != nil {
		h.log.Warn("send message", zap.Int64("chat_id", t.ChatID), zap.Error(err))
		return Failed
	}
	t.shown = sent.MessageID
	return Sent
}

// answer acknowledges the pressed button once per turn.
func (h *Handler) answer(t *turn, text string) {
	if t.CallbackID == "" || t.answered {
		return
	}
	t.answered = true
	if _, err := h.bot.Request(tgbotapi.NewCallback(t.CallbackID, text)); err != nil {
		h.log.Debug("answer callback", zap.Int64("chat_id", t.ChatID), zap.Error(err))
	}
}

func isEditError(err error, texts ...string) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	for _, s := range texts {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
