package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string

	// SessionInitTimeout is the failsafe window after which the session
	// manager reports itself initialized even if the credential event
	// stream never produced an event.
	SessionInitTimeout time.Duration

	// Reminder sweep job settings.
	ReminderSweepEnabled  bool
	ReminderSweepInterval time.Duration
	ReminderLookahead     time.Duration

	// Outbound mail. When SendgridAPIKey is empty the console mailer is used.
	SendgridAPIKey string
	MailFromName   string
	MailFromAddr   string
	ResetURLBase   string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/crewcall?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		SessionInitTimeout: getEnvDuration("SESSION_INIT_TIMEOUT", 5*time.Second),

		ReminderSweepEnabled:  getEnv("REMINDER_SWEEP_ENABLED", "true") == "true",
		ReminderSweepInterval: getEnvDuration("REMINDER_SWEEP_INTERVAL", time.Minute),
		ReminderLookahead:     getEnvDuration("REMINDER_LOOKAHEAD", 2*time.Hour),

		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFromName:   getEnv("MAIL_FROM_NAME", "CrewCall"),
		MailFromAddr:   getEnv("MAIL_FROM_ADDR", "no-reply@crewcall.local"),
		ResetURLBase:   getEnv("RESET_URL_BASE", "http://localhost:8080/reset-password"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
