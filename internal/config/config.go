package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	GatewayFake = "fake"
	GatewayPOS  = "pos"
	GatewayHub  = "hub"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string
	CORSOrigins     []string

	DB      DBConfig
	Gateway GatewayConfig
	Menu    MenuConfig
	Session SessionConfig
	Kafka   KafkaConfig
}

// DBConfig configures the Postgres pool. An empty DSN selects in-memory
// storage.
type DBConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
	PingTimeout     time.Duration
}

// GatewayConfig selects and configures the POS integration.
type GatewayConfig struct {
	Mode    string
	Timeout time.Duration
	StoreID string

	POSBaseURL string
	POSToken   string

	HubBaseURL     string
	HubPartnerID   string
	HubSecret      string
	HubStoreCode   string
	HubTokenMargin time.Duration
}

type MenuConfig struct {
	CSVPath  string
	CacheTTL time.Duration
}

type SessionConfig struct {
	IdleTTL        time.Duration
	AdminTapCount  int
	AdminTapWindow time.Duration
}

// KafkaConfig enables event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds Config with defaults, overridden by environment variables.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		CORSOrigins:     CSV(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		DB: DBConfig{
			DSN:             os.Getenv("DB_DSN"),
			MaxConns:        int32(envInt("DB_MAX_CONNS", 10)),
			MaxConnIdleTime: envDuration("DB_MAX_CONN_IDLE_SECONDS", 5*time.Minute),
			MaxConnLifetime: envDuration("DB_MAX_CONN_LIFETIME_SECONDS", 30*time.Minute),
			PingTimeout:     envDuration("DB_PING_TIMEOUT_SECONDS", 5*time.Second),
		},
		Gateway: GatewayConfig{
			Mode:           strings.ToLower(envOrDefault("GATEWAY_MODE", GatewayFake)),
			Timeout:        envDuration("GATEWAY_TIMEOUT_SECONDS", 15*time.Second),
			StoreID:        os.Getenv("STORE_ID"),
			POSBaseURL:     os.Getenv("POS_BASE_URL"),
			POSToken:       os.Getenv("POS_TOKEN"),
			HubBaseURL:     os.Getenv("HUB_BASE_URL"),
			HubPartnerID:   os.Getenv("HUB_PARTNER_ID"),
			HubSecret:      os.Getenv("HUB_SECRET"),
			HubStoreCode:   os.Getenv("HUB_STORE_CODE"),
			HubTokenMargin: envDuration("HUB_TOKEN_MARGIN_SECONDS", time.Minute),
		},
		Menu: MenuConfig{
			CSVPath:  os.Getenv("MENU_CSV"),
			CacheTTL: envDuration("MENU_CACHE_TTL_SECONDS", 2*time.Minute),
		},
		Session: SessionConfig{
			IdleTTL:        envDuration("SESSION_IDLE_TTL_SECONDS", 30*time.Minute),
			AdminTapCount:  envInt("ADMIN_TAP_COUNT", 5),
			AdminTapWindow: envMillis("ADMIN_TAP_WINDOW_MILLIS", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: CSV(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOrDefault("KAFKA_TOPIC", "kiosk.orders"),
		},
	}
}

// Validate reports settings the service cannot start with. Missing gateway
// credentials are not fatal; the gateway itself reports them per call.
func (c Config) Validate() error {
	switch c.Gateway.Mode {
	case GatewayFake, GatewayPOS, GatewayHub:
	default:
		return fmt.Errorf("GATEWAY_MODE: unknown mode %q (want fake, pos or hub)", c.Gateway.Mode)
	}
	if c.DB.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS: must be at least 1")
	}
	if c.Session.AdminTapCount < 1 {
		return fmt.Errorf("ADMIN_TAP_COUNT: must be at least 1")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC: required when KAFKA_BROKERS is set")
	}
	return nil
}

// CSV splits a comma separated list, dropping empty entries.
func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		ms, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}
