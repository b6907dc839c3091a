package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `validate:"required,oneof=development stage production"`
	Http Http

	Cors CORS `validate:"required"`

	Gateway Gateway `validate:"required"`

	Orders Orders `validate:"required"`

	Kafka Kafka

	Cache Cache
}

type Http struct {
	Host string `validate:"required,hostname|ip"`
	Port string `validate:"required,gt=0,lte=65535"`
}

type CORS struct {
	AllowedOrigins []string `validate:"required,min=1,dive,url"`
}

type Gateway struct {
	BaseURL string `validate:"required,url"`
	Token   string

	Timeout      time.Duration `validate:"gt=0"`
	PollInterval time.Duration `validate:"gt=0"`
}

// Orders — временные параметры жизненного цикла заказа: окно на принятие
// pending-заказа, окно доставки после принятия и период тика отсчёта.
type Orders struct {
	AcceptWindow   time.Duration `validate:"gt=0"`
	DeliveryWindow time.Duration `validate:"gt=0"`
	TickInterval   time.Duration `validate:"gt=0"`
}

// Kafka настраивает публикацию аудита смен статусов. Пустой список
// брокеров выключает публикацию целиком.
type Kafka struct {
	Brokers []string `validate:"omitempty,dive,hostname_port"`
	Topic   string

	BatchTimeout time.Duration `validate:"gte=0"`
}

type Cache struct {
	Capacity int           `validate:"gte=1"`
	TTL      time.Duration `validate:"gt=0"`
}

func New() Config {
	return Config{
		Env: env("ENV", "development"),

		Http: Http{
			Host: env("HOST", "localhost"),
			Port: env("PORT", "8080"),
		},

		Cors: CORS{
			AllowedOrigins: strings.Split(env("ALLOWED_CORS_ORIGINS", "http://localhost:3000"), ","),
		},

		Gateway: Gateway{
			BaseURL: env("GATEWAY_BASE_URL", "http://localhost:9000"),
			Token:   env("GATEWAY_TOKEN", ""),

			Timeout:      envDuration("GATEWAY_TIMEOUT", 10*time.Second),
			PollInterval: envDuration("GATEWAY_POLL_INTERVAL", 15*time.Second),
		},

		Orders: Orders{
			AcceptWindow:   envDuration("ORDER_ACCEPT_WINDOW", 2*time.Minute),
			DeliveryWindow: envDuration("ORDER_DELIVERY_WINDOW", 90*time.Minute),
			TickInterval:   envDuration("ORDER_TICK_INTERVAL", time.Second),
		},

		Kafka: Kafka{
			Brokers: splitNonEmpty(env("KAFKA_BROKERS", "")),
			Topic:   env("KAFKA_AUDIT_TOPIC", "order-status-audit"),

			BatchTimeout: envDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
		},

		Cache: Cache{
			Capacity: envInt("CACHE_CAPACITY", 64),
			TTL:      envDuration("CACHE_TTL", time.Minute),
		},
	}
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func env(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if len(fallback) == 0 {
		return ""
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}
