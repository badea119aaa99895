package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	OAuth    OAuthConfig
	Ai       AIConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	ClientURL          string
	Environment        string
	LogFilePath        string
	LogLevel           string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TrendingCacheTTL   time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Email    string
	Password string
	From     string
}

type AuthConfig struct {
	JWTSecret  string
	JWTExpires time.Duration
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type AIConfig struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	Timeout       time.Duration
	MoodRateRPS   float64
	MoodRateBurst int
}

// OpenAICompatURL is the OpenAI-compatible endpoint under the Gemini base URL.
func (c AIConfig) OpenAICompatURL() string {
	return strings.TrimRight(c.GeminiBaseURL, "/") + "/openai"
}

type OtelConfig struct {
	Enabled  bool
	Endpoint string
}

func (c *Config) IsProduction() bool { return c.App.Environment == "production" }

// Verbose reports whether debug logging is on.
func (c *Config) Verbose() bool { return strings.EqualFold(c.App.LogLevel, "debug") }

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Connection == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	return errors.Join(errs...)
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "4000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			TrendingCacheTTL:   getEnvAsDuration("TRENDING_CACHE_TTL", 30*time.Second),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Email:    getEnv("SMTP_EMAIL", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "Aura <no-reply@aura.local>"),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			JWTExpires: getEnvAsDuration("JWT_EXPIRES", 7*24*time.Hour),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Ai: AIConfig{
			GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			GeminiBaseURL: strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
			Timeout:       getEnvAsDuration("AI_TIMEOUT", 20*time.Second),
			MoodRateRPS:   getEnvAsFloat("MOOD_RATE_LIMIT_RPS", 1),
			MoodRateBurst: getEnvAsInt("MOOD_RATE_LIMIT_BURST", 5),
		},
		Otel: OtelConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil && value > 0 {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if d, ok := ParseDuration(getEnv(key, "")); ok {
		return d
	}
	return fallback
}

// ParseDuration accepts time.ParseDuration syntax plus a whole-day "Nd" form.
func ParseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
