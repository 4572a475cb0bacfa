package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"slot-bot/i18n"
)

// Sender is the part of *tgbotapi.BotAPI used for operator messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel posts announcements to operator chats. All sends share one
// limiter so a burst of bookings stays under the Bot API flood limits.
type TelegramChannel struct {
	bot     Sender
	chatIDs []int64
	limiter *rate.Limiter
	loc     *time.Location
	locale  i18n.Locale
}

func NewTelegramChannel(bot Sender, chatIDs []int64, perSecond float64, loc *time.Location, locale i18n.Locale) *TelegramChannel {
	if perSecond <= 0 {
		perSecond = 20
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TelegramChannel{
		bot:     bot,
		chatIDs: chatIDs,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		loc:     loc,
		locale:  locale,
	}
}

func (c *TelegramChannel) Name() string { return "telegram" }

// Send tries every operator chat and reports the failures together.
func (c *TelegramChannel) Send(ctx context.Context, a Announcement) error {
	text := FormatAnnouncement(a, c.loc, c.locale)
	var errs []error
	for _, chatID := range c.chatIDs {
		if err := c.limiter.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			break
		}
		if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// FormatAnnouncement renders the operator text for a.
func FormatAnnouncement(a Announcement, loc *time.Location, locale i18n.Locale) string {
	when := a.StartAt.In(loc).Format("2006-01-02 15:04") + "–" + a.EndAt.In(loc).Format("15:04")
	return i18n.T(locale, i18n.OperatorNewBooking, a.AppointmentID, a.ServiceName, when, a.ChatID)
}
