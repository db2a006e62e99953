package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile  string // Optional: path to SQLite database file (default: ./users.db)
	BaseGrant     int    // Optional: invitation quota for new users (default: 1)
	ReferralBonus int    // Optional: permanent quota bonus on invited signup (default: 1)

	SessionSecret string        // Required: HMAC secret for session tokens
	SessionTTL    time.Duration // Optional: session token lifetime (default: 24h)
	Pepper        string        // Optional: pepper mixed into password hashes

	AdminEmail    string // Optional: first-boot admin email (default: admin@localhost)
	AdminPassword string // Optional: first-boot admin password; admin is not seeded when empty

	SendGridAPIKey string // Optional: invitation mail goes to the log when empty
	MailFrom       string // Optional: sender address (default: noreply@localhost)
	MailFromName   string // Optional: sender display name

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:  getEnvOrDefault("USERS_DATABASE_FILE", "users.db"),
		BaseGrant:     getEnvIntOrDefault("USERS_BASE_GRANT", 1),
		ReferralBonus: getEnvIntOrDefault("USERS_REFERRAL_BONUS", 1),

		SessionSecret: os.Getenv("USERS_SESSION_SECRET"),
		SessionTTL:    getEnvDurationOrDefault("USERS_SESSION_TTL", 24*time.Hour),
		Pepper:        os.Getenv("USERS_PEPPER"),

		AdminEmail:    getEnvOrDefault("USERS_ADMIN_EMAIL", "admin@localhost"),
		AdminPassword: os.Getenv("USERS_ADMIN_PASSWORD"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnvOrDefault("MAIL_FROM", "noreply@localhost"),
		MailFromName:   os.Getenv("MAIL_FROM_NAME"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
