package handlers

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"slot-bot/events"
	"slot-bot/i18n"
	"slot-bot/types"
)

const slotsPerRow = 4

func languageKeyboard() *tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, l := range i18n.Supported {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(i18n.Name(l), events.LangData(string(l))))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(row)
	return &kb
}

func servicesKeyboard(services []types.Service) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range services {
		btn := tgbotapi.NewInlineKeyboardButtonData(serviceLabel(s), events.ServiceData(s.ID))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func slotsKeyboard(slots []types.Slot, loc *time.Location) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, s := range slots {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(s.StartAt.In(loc).Format("15:04"), events.SlotData(s.ID)))
		if len(row) == slotsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func confirmKeyboard(t *turn, slotID int64) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(t.t(i18n.ConfirmButton), events.ConfirmData(slotID)),
		tgbotapi.NewInlineKeyboardButtonData(t.t(i18n.CancelButton), events.CancelData(slotID)),
	))
	return &kb
}

// appointmentsKeyboard has a cancel button for every confirmed appointment.
func appointmentsKeyboard(t *turn, list []types.Booking) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range list {
		if b.Appointment.Status != types.StatusConfirmed {
			continue
		}
		label := t.t(i18n.CancelButton) + " #" + itoa(b.Appointment.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, events.CancelData(b.Appointment.ID)),
		))
	}
	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func linkKeyboard(text, url string) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonURL(text, url),
	))
	return &kb
}
