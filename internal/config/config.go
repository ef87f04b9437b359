// config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Host          string
	Port          string
	LogLevel      string
	ServerName    string
	ServerVersion string

	SeedPoolSize int
	SeedPoolSeed uint64

	// Vacío = deshabilitado
	RabbitURL   string
	MongoURI    string
	MongoDBName string
	AdminToken  string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load lee .env si existe y después el entorno.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Host:          getEnv("HOST", "0.0.0.0"),
		Port:          getEnv("PORT", "7860"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ServerName:    getEnv("SERVER_NAME", "order-support-mcp"),
		ServerVersion: getEnv("SERVER_VERSION", "1.0.0"),

		SeedPoolSize: getEnvInt("SEED_POOL_SIZE", 20),
		SeedPoolSeed: uint64(getEnvInt("SEED_POOL_SEED", 42)),

		RabbitURL:   getEnv("RABBIT_URL", ""),
		MongoURI:    getEnv("MONGO_URI", ""),
		MongoDBName: getEnv("MONGO_DB_NAME", "order_support"),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
	}
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Valores que no parsean caen al default.
func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil && n >= 0 {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil && f >= 0 {
		return f
	}
	return fallback
}
