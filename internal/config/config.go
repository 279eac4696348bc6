package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr       string
	CORSOrigin string
	BcryptCost int
	// Redis Configuration (session token registry)
	RedisURL string
	// Meilisearch Configuration - empty URL disables the accelerated backend
	MeiliURL       string
	MeiliMasterKey string
	// SMTP Configuration (password reset codes) - empty host disables sending
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
}

func Load() Config {
	return Config{
		Addr:           getenv("HUDDLE_ADDR", ":8787"),
		CORSOrigin:     getenv("HUDDLE_CORS_ORIGIN", "*"),
		BcryptCost:     getenvInt("HUDDLE_BCRYPT_COST", 10),
		RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		SMTPHost:       getenv("SMTP_HOST", ""),
		SMTPPort:       getenv("SMTP_PORT", "587"),
		SMTPUsername:   getenv("SMTP_USERNAME", ""),
		SMTPPassword:   getenv("SMTP_PASSWORD", ""),
		SMTPFrom:       getenv("SMTP_FROM", ""),
		SMTPFromName:   getenv("SMTP_FROM_NAME", "Huddle"),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
