package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	RedisURL      string
	RedisPassword string
	RedisDB       int
	JWTSecret     string

	// HMAC secret for verifying inbound webhook signatures
	WebhookChannelSecret string

	// Year used when an absence date like "8月31日" carries no year.
	// 0 means use the current year at classification time.
	ReportYear int

	DispatchTimeoutSeconds int // per-channel send timeout
	DedupTTLSeconds        int // webhook event dedup window

	Email struct {
		Enabled   bool
		Host      string
		Port      int
		Username  string
		Password  string
		From      string
		ManagerTo string
	}

	Chat struct {
		Enabled    bool
		WebhookURL string
		Channel    string
		Username   string
	}

	Record struct {
		Enabled bool
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	reportYear, _ := strconv.Atoi(getEnv("REPORT_YEAR", "0"))
	dispatchTimeout, _ := strconv.Atoi(getEnv("DISPATCH_TIMEOUT_SECONDS", "10"))
	dedupTTL, _ := strconv.Atoi(getEnv("DEDUP_TTL_SECONDS", "300"))

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		RedisURL:               getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                redisDB,
		JWTSecret:              os.Getenv("JWT_SECRET"),
		WebhookChannelSecret:   os.Getenv("WEBHOOK_CHANNEL_SECRET"),
		ReportYear:             reportYear,
		DispatchTimeoutSeconds: dispatchTimeout,
		DedupTTLSeconds:        dedupTTL,
	}

	cfg.Email.Enabled = getEnv("EMAIL_ENABLED", "false") == "true"
	cfg.Email.Host = getEnv("SMTP_HOST", "localhost")
	cfg.Email.Port, _ = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	cfg.Email.Username = os.Getenv("SMTP_USERNAME")
	cfg.Email.Password = os.Getenv("SMTP_PASSWORD")
	cfg.Email.From = os.Getenv("SMTP_FROM")
	cfg.Email.ManagerTo = os.Getenv("MANAGER_EMAIL")

	cfg.Chat.Enabled = getEnv("CHAT_ENABLED", "false") == "true"
	cfg.Chat.WebhookURL = os.Getenv("CHAT_WEBHOOK_URL")
	cfg.Chat.Channel = getEnv("CHAT_CHANNEL", "#general")
	cfg.Chat.Username = getEnv("CHAT_USERNAME", "欠勤管理Bot")

	cfg.Record.Enabled = getEnv("RECORD_ENABLED", "true") == "true"

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
