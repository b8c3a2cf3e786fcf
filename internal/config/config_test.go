package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_DSN", "DB_MAX_CONNS", "DB_PING_TIMEOUT_SECONDS", "GATEWAY_MODE", "ADMIN_TAP_COUNT", "ADMIN_TAP_WINDOW_MILLIS", "KAFKA_BROKERS", "CORS_ALLOWED_ORIGINS", "MENU_CACHE_TTL_SECONDS"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.DB.DSN)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Minute, cfg.DB.MaxConnIdleTime)
	assert.Equal(t, 30*time.Minute, cfg.DB.MaxConnLifetime)
	assert.Equal(t, 5*time.Second, cfg.DB.PingTimeout)
	assert.Equal(t, GatewayFake, cfg.Gateway.Mode)
	assert.Equal(t, 5, cfg.Session.AdminTapCount)
	assert.Equal(t, 3*time.Second, cfg.Session.AdminTapWindow)
	assert.Equal(t, 2*time.Minute, cfg.Menu.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Nil(t, cfg.Kafka.Brokers)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GATEWAY_MODE", "HUB")
	t.Setenv("HUB_TOKEN_MARGIN_SECONDS", "90")
	t.Setenv("ADMIN_TAP_WINDOW_MILLIS", "1500")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SESSION_IDLE_TTL_SECONDS", "not-a-number")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_PING_TIMEOUT_SECONDS", "2")

	cfg := FromEnv()
	assert.Equal(t, GatewayHub, cfg.Gateway.Mode)
	assert.Equal(t, 90*time.Second, cfg.Gateway.HubTokenMargin)
	assert.Equal(t, 1500*time.Millisecond, cfg.Session.AdminTapWindow)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, int32(4), cfg.DB.MaxConns)
	assert.Equal(t, 2*time.Second, cfg.DB.PingTimeout)
}

func TestValidate(t *testing.T) {
	cfg := Config{DB: DBConfig{MaxConns: 1}, Gateway: GatewayConfig{Mode: "ifood"}, Session: SessionConfig{AdminTapCount: 5}}
	assert.ErrorContains(t, cfg.Validate(), "GATEWAY_MODE")

	cfg.Gateway.Mode = GatewayFake
	cfg.DB.MaxConns = 0
	assert.ErrorContains(t, cfg.Validate(), "DB_MAX_CONNS")
	cfg.DB.MaxConns = 1

	cfg.Gateway.Mode = GatewayPOS
	cfg.Session.AdminTapCount = 0
	assert.ErrorContains(t, cfg.Validate(), "ADMIN_TAP_COUNT")

	cfg.Session.AdminTapCount = 3
	cfg.Kafka = KafkaConfig{Brokers: []string{"k:9092"}}
	assert.ErrorContains(t, cfg.Validate(), "KAFKA_TOPIC")
}
