package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nikolayk812/ecomall/internal/domain"
	"golang.org/x/text/currency"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	DB       PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Admin    AdminConfig
	Checkout CheckoutConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type ServerConfig struct {
	Host string
	Port int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig with an empty URL selects the in-memory session store.
type RedisConfig struct {
	URL        string
	SessionTTL time.Duration
}

// KafkaConfig with no brokers disables order events.
type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type AdminConfig struct {
	Token string
}

type CheckoutConfig struct {
	APIBaseURL      string
	SubmitTimeout   time.Duration
	Region          string
	Pincodes        []string
	MinClubQuantity int
	Currency        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "ecomall"),
			Env:  getEnv("APP_ENV", "local"),
		},
		Server: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnvAsInt("HTTP_PORT", 8030),
		},
		DB: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "ecomall"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			URL:        getEnv("REDIS_URL", ""),
			SessionTTL: getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:    splitAndTrim(getEnv("KAFKA_BOOTSTRAP_SERVERS", "")),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", "orders.created"),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
		Checkout: CheckoutConfig{
			APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8030"),
			SubmitTimeout:   getEnvAsDuration("SUBMIT_TIMEOUT", 10*time.Second),
			Region:          getEnv("DELIVERY_REGION", domain.DefaultRegion),
			Pincodes:        splitAndTrim(getEnv("DELIVERY_PINCODES", strings.Join(domain.DefaultPincodes, ","))),
			MinClubQuantity: getEnvAsInt("CLUB_MINIMUM_QUANTITY", domain.DefaultMinClubQuantity),
			Currency:        getEnv("CURRENCY", "INR"),
		},
	}

	return cfg, cfg.validate()
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Validate is called by the server only, the checkout client has no admin surface.
func (a AdminConfig) Validate() error {
	if strings.TrimSpace(a.Token) == "" {
		return errors.New("ADMIN_TOKEN is empty")
	}
	return nil
}

func (c CheckoutConfig) Rules() domain.Rules {
	return domain.Rules{
		Region:          c.Region,
		Pincodes:        append([]string(nil), c.Pincodes...),
		MinClubQuantity: c.MinClubQuantity,
	}
}

func (c CheckoutConfig) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency.ParseISO[%s]: %w", c.Currency, err)
	}
	return unit, nil
}

/* ================= helpers ================= */

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("HTTP_PORT is invalid")
	}
	if c.DB.Host == "" || c.DB.User == "" || c.DB.DBName == "" {
		return fmt.Errorf("database config is incomplete")
	}
	if c.Redis.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Kafka.Enabled() && c.Kafka.OrderTopic == "" {
		return fmt.Errorf("KAFKA_ORDER_TOPIC is empty")
	}
	if c.Checkout.SubmitTimeout <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT must be positive")
	}
	if err := c.Checkout.Rules().Check(); err != nil {
		return fmt.Errorf("checkout rules: %w", err)
	}
	if _, err := c.Checkout.CurrencyUnit(); err != nil {
		return fmt.Errorf("CURRENCY is invalid: %w", err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if val := strings.TrimSpace(p); val != "" {
			out = append(out, val)
		}
	}
	return out
}
