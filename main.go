package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"slot-bot/booking"
	"slot-bot/config"
	"slot-bot/dispatcher"
	"slot-bot/events"
	"slot-bot/handlers"
	"slot-bot/handoff"
	"slot-bot/i18n"
	"slot-bot/logger"
	"slot-bot/metrics"
	"slot-bot/notifier"
	"slot-bot/server"
	"slot-bot/storage"
	"slot-bot/types"
)

type slotStore interface {
	booking.Store
	server.Pinger
}

func main() {
	os.Exit(start())
}

// start returns the process exit code so deferred cleanup, including the
// logger flush, runs on every path.
func start() int {
	cfg, err := config.Load()
	if err != nil {
		// logger is not built yet
		fmt.Fprintln(os.Stderr, "❌", err)
		return 1
	}

	log, err := logger.New(config.IsProduction(cfg.Env), cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("❌ bot stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	log.Info("🌍 timezone", zap.String("tz", loc.String()), zap.Time("now", time.Now().In(loc)))

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	redisClient := storage.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = redisClient.Close() }()
	sessions := storage.NewSessionStore(redisClient, cfg.SessionTTL)
	if err := sessions.Ping(ctx); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return err
	}
	bot.Debug = !config.IsProduction(cfg.Env) && cfg.LogLevel == "debug"
	log.Info("🤖 authorized", zap.String("account", bot.Self.UserName))

	botUsername := cfg.BotUsername
	if botUsername == "" {
		botUsername = bot.Self.UserName
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBotMetrics(reg)

	defaultLocale, ok := i18n.Parse(cfg.DefaultLocale)
	if !ok {
		defaultLocale = i18n.English
	}

	var channels []notifier.Channel
	if len(cfg.OperatorChatIDs) > 0 {
		channels = append(channels, notifier.NewTelegramChannel(bot, cfg.OperatorChatIDs, cfg.NotifyRatePerSecond, loc, defaultLocale))
	}
	if email := notifier.NewEmailChannel(notifier.EmailConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
		To:        cfg.OperatorEmails,
	}, loc, defaultLocale); email != nil {
		channels = append(channels, email)
	}
	notify := notifier.New(channels, cfg.NotifyWorkers, cfg.NotifyQueueSize, m, log)
	notify.Start(ctx)

	signer := handoff.NewSigner(cfg.HandoffSecret, cfg.HandoffTokenTTL)
	handler := handlers.New(bot,
		sessions,
		i18n.NewResolver(sessions, cfg.DefaultLocale, log),
		booking.NewSlotQuery(store, loc, cfg.SlotPageSize),
		booking.NewEngine(store, notify, m, log),
		signer,
		handlers.Options{
			BotUsername:     botUsername,
			PlatformHost:    cfg.PlatformHost,
			CalendarBaseURL: cfg.CalendarBaseURL,
			CutoffMinutes:   cfg.CutoffMinutes,
			Location:        loc,
		},
		log,
	)

	d := dispatcher.New(handler, cfg.DispatchWorkers, 0, m, log)
	d.Start(ctx)

	srv := server.New(cfg.HTTPAddr, server.NewRouter(server.Config{
		Logger:         log,
		Handoff:        handoff.NewHandler(signer, d, m, loc, log),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Checks: map[string]server.Pinger{
			"store": store,
			"redis": sessions,
		},
	}), log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		pollUpdates(gctx, bot, d, log)
		return nil
	})

	log.Info("✅ bot is running")
	err = g.Wait()

	log.Info("🛑 shutting down")
	d.Stop()
	notify.Stop()
	return err
}

// openStore connects the slot/appointment store selected by STORAGE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (slotStore, func(), error) {
	if cfg.StorageBackend == "memory" {
		mem := storage.NewMemory()
		seedMemory(mem, cfg.Location(), time.Now())
		log.Warn("⚠️ using in-memory store, appointments are lost on restart")
		return mem, func() {}, nil
	}

	if cfg.MigrateOnStart {
		if err := storage.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		log.Info("📦 migrations applied")
	}
	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewPostgres(pool), pool.Close, nil
}

// seedMemory fills a fresh in-memory store with a small catalog and a week of
// working-hours slots so the bot is usable without a database.
func seedMemory(mem *storage.Memory, loc *time.Location, now time.Time) {
	services := []types.Service{
		{ID: 1, Name: "Haircut", DurationMinutes: 30},
		{ID: 2, Name: "Consultation", DurationMinutes: 60},
	}
	var slotID int64
	day := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	for _, svc := range services {
		mem.AddService(svc)
		step := time.Duration(svc.DurationMinutes) * time.Minute
		for d := 0; d < 7; d++ {
			open := day.AddDate(0, 0, d).Add(9 * time.Hour)
			closing := open.Add(8 * time.Hour)
			for start := open; start.Add(step).Compare(closing) <= 0; start = start.Add(step) {
				slotID++
				mem.AddSlot(types.Slot{ID: slotID, ServiceID: svc.ID, StartAt: start, EndAt: start.Add(step)})
			}
		}
	}
}

// pollUpdates feeds Telegram updates into the dispatcher until ctx is done.
func pollUpdates(ctx context.Context, bot *tgbotapi.BotAPI, d *dispatcher.Dispatcher, log *zap.Logger) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			in, ok := toInbound(update)
			if !ok {
				continue
			}
			if err := d.Submit(ctx, in); err != nil {
				log.Warn("drop update", zap.Int64("chat_id", in.ChatID), zap.Error(err))
			}
		}
	}
}

// toInbound decodes an update into the event for its chat. Updates the bot
// does not react to report false.
func toInbound(update tgbotapi.Update) (events.Inbound, bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil {
			return events.Inbound{}, false
		}
		in := events.Inbound{
			ChatID:   msg.Chat.ID,
			ChatKind: types.ChatKind(msg.Chat.Type),
		}
		if msg.From != nil {
			in.LocaleHint = msg.From.LanguageCode
		}
		switch {
		case msg.IsCommand():
			in.Event = events.DecodeCommand(msg.Command(), msg.CommandArguments())
		case in.ChatKind == types.ChatPrivate:
			in.Event = events.GenericError{Raw: msg.Text}
		default:
			// plain chatter in groups is not addressed to the bot
			return events.Inbound{}, false
		}
		return in, true

	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Message == nil || cq.Message.Chat == nil {
			return events.Inbound{}, false
		}
		in := events.Inbound{
			ChatID:     cq.Message.Chat.ID,
			ChatKind:   types.ChatKind(cq.Message.Chat.Type),
			MessageID:  cq.Message.MessageID,
			CallbackID: cq.ID,
			Event:      events.DecodeAction(cq.Data),
		}
		if cq.From != nil {
			in.LocaleHint = cq.From.LanguageCode
		}
		return in, true
	}
	return events.Inbound{}, false
}
