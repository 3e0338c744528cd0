package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

// Брокеры для доставки событий outbox
const (
	BrokerNone     = "none"
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
)

var (
	// ErrInvalidConfig возвращается при некорректных значениях конфигурации
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Redis         RedisConfig         `toml:"redis"`
	Scheduling    SchedulingConfig    `toml:"scheduling"`
	Notifications NotificationsConfig `toml:"notifications"`
	RateLimit     RateLimitConfig     `toml:"rate_limit"`
	Tracing       TracingConfig       `toml:"tracing"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	SessionTTL int    `toml:"session_ttl"` // секунды
}

// SessionTTLDuration время жизни сессии мастера бронирования
func (c RedisConfig) SessionTTLDuration() time.Duration {
	return time.Duration(c.SessionTTL) * time.Second
}

type SchedulingConfig struct {
	SlotIntervalMinutes    int       `toml:"slot_interval_minutes"`
	DefaultServiceDuration int       `toml:"default_service_duration"`
	BookingHorizonDays     int       `toml:"booking_horizon_days"`
	WeekdayNames           [7]string `toml:"weekday_names"`
	ClosedMarker           string    `toml:"closed_marker"`
	MinPhoneDigits         int       `toml:"min_phone_digits"`
	PhoneRegion            string    `toml:"phone_region"`
	Timezone               string    `toml:"timezone"`
}

// Location часовой пояс салонов
func (c SchedulingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

type NotificationsConfig struct {
	Broker   string         `toml:"broker"`
	Kafka    KafkaConfig    `toml:"kafka"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Telegram TelegramConfig `toml:"telegram"`
	Outbox   OutboxConfig   `toml:"outbox"`
}

type KafkaConfig struct {
	Brokers []string `toml:"brokers"`
	GroupID string   `toml:"group_id"`
}

type RabbitMQConfig struct {
	URL   string `toml:"url"`
	Queue string `toml:"queue"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BaseURL  string `toml:"base_url"`
	BotToken string `toml:"bot_token"`
	Timeout  int    `toml:"timeout"`

	// WebhookSecret сверяется с X-Telegram-Bot-Api-Secret-Token, пустой - без проверки
	WebhookSecret string `toml:"webhook_secret"`
}

type OutboxConfig struct {
	PollInterval int `toml:"poll_interval"` // миллисекунды
	BatchSize    int `toml:"batch_size"`
	MaxAttempts  int `toml:"max_attempts"`
	Lease        int `toml:"lease"` // секунды, на сколько relay забирает пачку
}

// PollIntervalDuration период опроса outbox
func (c OutboxConfig) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// LeaseDuration время, на которое пачка закрепляется за relay
func (c OutboxConfig) LeaseDuration() time.Duration {
	return time.Duration(c.Lease) * time.Second
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type TracingConfig struct {
	Enabled     bool    `toml:"enabled"`
	Endpoint    string  `toml:"endpoint"`
	SampleRatio float64 `toml:"sample_ratio"`
}

// Load читает конфигурацию из toml файла.
// Секреты можно переопределить переменными окружения (в том числе из .env).
func Load(path string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Scheduling.SlotIntervalMinutes <= 0 {
		return fmt.Errorf("%w: scheduling.slot_interval_minutes must be positive", ErrInvalidConfig)
	}
	if c.Scheduling.DefaultServiceDuration <= 0 {
		return fmt.Errorf("%w: scheduling.default_service_duration must be positive", ErrInvalidConfig)
	}
	if c.Scheduling.BookingHorizonDays <= 0 {
		return fmt.Errorf("%w: scheduling.booking_horizon_days must be positive", ErrInvalidConfig)
	}
	for i, name := range c.Scheduling.WeekdayNames {
		if name == "" {
			return fmt.Errorf("%w: scheduling.weekday_names[%d] is empty", ErrInvalidConfig, i)
		}
	}
	if _, err := c.Scheduling.Location(); err != nil {
		return fmt.Errorf("%w: scheduling.timezone: %v", ErrInvalidConfig, err)
	}

	switch c.Notifications.Broker {
	case BrokerNone:
	case BrokerKafka:
		if len(c.Notifications.Kafka.Brokers) == 0 {
			return fmt.Errorf("%w: notifications.kafka.brokers is empty", ErrInvalidConfig)
		}
	case BrokerRabbitMQ:
		if c.Notifications.RabbitMQ.URL == "" {
			return fmt.Errorf("%w: notifications.rabbitmq.url is empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown notifications.broker %q", ErrInvalidConfig, c.Notifications.Broker)
	}

	if c.Notifications.Telegram.Enabled && c.Notifications.Telegram.BotToken == "" {
		return fmt.Errorf("%w: notifications.telegram.bot_token is required", ErrInvalidConfig)
	}

	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "salon-booking-service",
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			SessionTTL: 1800,
		},
		Scheduling: SchedulingConfig{
			SlotIntervalMinutes:    domain.DefaultSlotIntervalMinutes,
			DefaultServiceDuration: domain.DefaultServiceDurationMinutes,
			BookingHorizonDays:     domain.DefaultBookingHorizonDays,
			WeekdayNames:           domain.DefaultWeekdayNames,
			ClosedMarker:           domain.ClosedMarker,
			MinPhoneDigits:         domain.DefaultMinPhoneDigits,
			PhoneRegion:            domain.DefaultPhoneRegion,
		},
		Notifications: NotificationsConfig{
			Broker: BrokerNone,
			Kafka: KafkaConfig{
				GroupID: "salon-booking-notifier",
			},
			RabbitMQ: RabbitMQConfig{
				Queue: "booking_events",
			},
			Telegram: TelegramConfig{
				BaseURL: "https://api.telegram.org",
				Timeout: 10,
			},
			Outbox: OutboxConfig{
				PollInterval: 1000,
				BatchSize:    50,
				MaxAttempts:  10,
				Lease:        60,
			},
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4317",
			SampleRatio: 1,
		},
	}
}

// applyEnv переопределяет секреты и адреса из окружения
func applyEnv(cfg *Config) error {
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Notifications.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&cfg.Notifications.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Notifications.Telegram.WebhookSecret, "TELEGRAM_WEBHOOK_SECRET")
	setString(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	if v, ok := os.LookupEnv("DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DB_PORT: %v", ErrInvalidConfig, err)
		}
		cfg.Database.Port = port
	}

	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
