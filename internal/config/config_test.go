package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/Skotchmaster/game_store/pkg/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "TX_TIMEOUT", "BOT_WORKERS", "RESTOCK_ON_CANCEL", "PLATFORMS", "KAFKA_BROKERS", "ES_INDEX"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "instance/data.db", cfg.DatabaseURL)
	assert.Equal(t, 10*time.Second, cfg.TxTimeout)
	assert.Equal(t, 8, cfg.BotWorkers)
	assert.False(t, cfg.RestockOnCancel)
	assert.Equal(t, DefaultPlatforms, cfg.Platforms)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "products", cfg.ESIndex)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/shop")
	t.Setenv("TX_TIMEOUT", "3s")
	t.Setenv("RESTOCK_ON_CANCEL", "true")
	t.Setenv("PLATFORMS", "PC, Switch ,")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BOT_WORKERS", "nope")

	cfg := FromEnv()
	assert.Equal(t, "postgres://u:p@localhost/shop", cfg.DatabaseURL)
	assert.Equal(t, 3*time.Second, cfg.TxTimeout)
	assert.True(t, cfg.RestockOnCancel)
	assert.Equal(t, []string{"PC", "Switch"}, cfg.Platforms)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 8, cfg.BotWorkers)
}

func TestRequire(t *testing.T) {
	cfg := &Config{}
	require.ErrorIs(t, cfg.RequireBot(), pkgconfig.ErrMissingEnv)
	require.ErrorIs(t, cfg.RequireAdmin(), pkgconfig.ErrMissingEnv)

	cfg.TelegramToken = "123:abc"
	cfg.JWTSecret = []byte("secret")
	require.NoError(t, cfg.RequireBot())
	require.NoError(t, cfg.RequireAdmin())
}
