package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	AppName           string
	Env               string
	Port              string
	DatabaseURL       string
	DBTimeZone        string
	JWTSecret         string
	SeedAdminEmail    string
	SeedAdminPassword string
	LowStockThreshold int64
}

// Load reads configuration from the environment (populated from .env by the caller)
func Load() Config {
	return Config{
		AppName:           getEnv("APP_NAME", "Kitchen POS v1.0"),
		Env:               getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "3000"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBTimeZone:        getEnv("DB_TIMEZONE", "UTC"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		LowStockThreshold: parseInt("LOW_STOCK_THRESHOLD", 5),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Printf("invalid integer for %s: %s", key, v)
			return def
		}
		return n
	}
	return def
}
