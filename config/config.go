package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultCutoffMinutes = 30
	DefaultPageSize      = 20
)

// Config holds all configuration values.
type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	BotUsername      string `mapstructure:"BOT_USERNAME"`
	PlatformHost     string `mapstructure:"PLATFORM_HOST"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	MigrateOnStart bool   `mapstructure:"MIGRATE_ON_START"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`

	CutoffMinutes int `mapstructure:"CUTOFF_MINUTES"`
	SlotPageSize  int `mapstructure:"SLOT_PAGE_SIZE"`

	CalendarBaseURL string        `mapstructure:"CALENDAR_BASE_URL"`
	HandoffSecret   string        `mapstructure:"HANDOFF_SECRET"`
	HandoffTokenTTL time.Duration `mapstructure:"HANDOFF_TOKEN_TTL"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR"`

	// Operator notification channels
	OperatorChatIDs     []int64  `mapstructure:"-"`
	OperatorEmails      []string `mapstructure:"-"`
	SendGridAPIKey      string   `mapstructure:"SENDGRID_API_KEY"`
	SendGridFromEmail   string   `mapstructure:"SENDGRID_FROM_EMAIL"`
	SendGridFromName    string   `mapstructure:"SENDGRID_FROM_NAME"`
	NotifyWorkers       int      `mapstructure:"NOTIFY_WORKERS"`
	NotifyQueueSize     int      `mapstructure:"NOTIFY_QUEUE_SIZE"`
	NotifyRatePerSecond float64  `mapstructure:"NOTIFY_RATE_PER_SECOND"`

	DispatchWorkers int    `mapstructure:"DISPATCH_WORKERS"`
	DefaultLocale   string `mapstructure:"DEFAULT_LOCALE"`
	Timezone        string `mapstructure:"TIMEZONE"`
}

var keys = []string{
	"ENV", "LOG_LEVEL", "TELEGRAM_BOT_TOKEN", "BOT_USERNAME", "PLATFORM_HOST",
	"STORAGE_BACKEND", "DATABASE_URL", "MIGRATE_ON_START",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SESSION_TTL",
	"CUTOFF_MINUTES", "SLOT_PAGE_SIZE",
	"CALENDAR_BASE_URL", "HANDOFF_SECRET", "HANDOFF_TOKEN_TTL", "HTTP_ADDR",
	"OPERATOR_CHAT_IDS", "OPERATOR_EMAILS",
	"SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL", "SENDGRID_FROM_NAME",
	"NOTIFY_WORKERS", "NOTIFY_QUEUE_SIZE", "NOTIFY_RATE_PER_SECOND",
	"DISPATCH_WORKERS", "DEFAULT_LOCALE", "TIMEZONE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PLATFORM_HOST", "https://t.me")
	v.SetDefault("STORAGE_BACKEND", "postgres")
	v.SetDefault("MIGRATE_ON_START", true)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("CUTOFF_MINUTES", DefaultCutoffMinutes)
	v.SetDefault("SLOT_PAGE_SIZE", DefaultPageSize)
	v.SetDefault("CALENDAR_BASE_URL", "http://localhost:8080/picker")
	v.SetDefault("HANDOFF_TOKEN_TTL", "30m")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("SENDGRID_FROM_NAME", "Slot Bot")
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 128)
	v.SetDefault("NOTIFY_RATE_PER_SECOND", 20)
	v.SetDefault("DISPATCH_WORKERS", 8)
	v.SetDefault("DEFAULT_LOCALE", "en")
	v.SetDefault("TIMEZONE", "UTC")
}

// Load reads .env (if present), config.yaml (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about when unmarshalling
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	ids, err := parseChatIDs(v.GetString("OPERATOR_CHAT_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.OperatorChatIDs = ids
	cfg.OperatorEmails = splitList(v.GetString("OPERATOR_EMAILS"))

	if cfg.CutoffMinutes < 0 {
		cfg.CutoffMinutes = DefaultCutoffMinutes
	}
	if cfg.SlotPageSize <= 0 {
		cfg.SlotPageSize = DefaultPageSize
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values required to start the bot.
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramBotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN not set"))
	}
	if c.HandoffSecret == "" {
		errs = append(errs, errors.New("HANDOFF_SECRET not set"))
	}
	switch c.StorageBackend {
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL not set"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Location returns the configured timezone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func IsProduction(env string) bool {
	return env == "production"
}

func parseChatIDs(raw string) ([]int64, error) {
	parts := splitList(raw)
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: OPERATOR_CHAT_IDS: %q is not a chat id", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
