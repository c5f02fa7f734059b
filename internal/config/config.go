package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName string
	AppEnv  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string

	// Posting limits
	MaxPostsPerHour int
	MaxPostsPerDay  int
	CommentCooldown time.Duration

	// Moderation
	BannedWords          []string
	ReportAlertThreshold int

	// Twilio (moderator SMS alerts)
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	ModeratorPhones  []string

	SentryDSN string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars take precedence.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppName: getEnv("APP_NAME", "Sussurro"),
		AppEnv:  getEnv("APP_ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "sussurro"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		MaxPostsPerHour: parseInt(getEnv("MAX_POSTS_PER_HOUR", "5"), 5),
		MaxPostsPerDay:  parseInt(getEnv("MAX_POSTS_PER_DAY", "20"), 20),
		CommentCooldown: time.Duration(parseInt(getEnv("COMMENT_COOLDOWN_SECONDS", "15"), 15)) * time.Second,

		BannedWords:          ParseCSV(getEnv("BANNED_WORDS", "")),
		ReportAlertThreshold: parseInt(getEnv("REPORT_ALERT_THRESHOLD", "5"), 5),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		ModeratorPhones:  ParseCSV(getEnv("MODERATOR_PHONES", "")),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// TwilioEnabled reports whether SMS alerts can be sent.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != "" && len(c.ModeratorPhones) > 0
}

// ParseCSV splits a comma separated list, dropping blanks.
func ParseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
