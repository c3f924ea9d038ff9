package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	NatsURL         string
	NatsToken       string
	DatabaseURL     string
	LogLevel        string
	CredentialsFile string
	ImpersonateUser string
	DriveFolderID   string
	NameFilter      string
	Concurrency     int
	DocumentTimeout time.Duration
	ScanInterval    time.Duration
	SlackBotToken   string
	SlackChannel    string
	APIToken        string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            envInt("MINUTES_PORT", 8760),
		NatsURL:         envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:       envStr("NATS_TOKEN", ""),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		CredentialsFile: envStr("GOOGLE_CREDENTIALS_FILE", ""),
		ImpersonateUser: envStr("GOOGLE_IMPERSONATE_USER", ""),
		DriveFolderID:   envStr("DRIVE_FOLDER_ID", ""),
		NameFilter:      envStr("NOTES_NAME_FILTER", "Notes by Gemini"),
		Concurrency:     envInt("MINUTES_CONCURRENCY", 4),
		DocumentTimeout: envDuration("MINUTES_DOC_TIMEOUT", 60*time.Second),
		ScanInterval:    envDuration("MINUTES_SCAN_INTERVAL", 15*time.Minute),
		SlackBotToken:   envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:    envStr("SLACK_MINUTES_CHANNEL", ""),
		APIToken:        envStr("MINUTES_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
