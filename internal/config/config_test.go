package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HOST", "PORT", "SEED_POOL_SIZE", "SEED_POOL_SEED", "RABBIT_URL", "MONGO_URI", "RATE_LIMIT_RPS"} {
		t.Setenv(k, "")
	}
	t.Setenv("PORT", "7860")
	t.Setenv("HOST", "0.0.0.0")

	cfg := Load()
	assert.Equal(t, "0.0.0.0:7860", cfg.Addr())
	assert.Equal(t, 20, cfg.SeedPoolSize)
	assert.Equal(t, uint64(42), cfg.SeedPoolSeed)
	assert.Empty(t, cfg.RabbitURL)
	assert.Empty(t, cfg.MongoURI)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SEED_POOL_SIZE", "5")
	t.Setenv("SEED_POOL_SEED", "7")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "nope")
	t.Setenv("ADMIN_TOKEN", "secret")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5, cfg.SeedPoolSize)
	assert.Equal(t, uint64(7), cfg.SeedPoolSeed)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, "secret", cfg.AdminToken)
}
