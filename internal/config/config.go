package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	PostgresDSN        string
	JWTSecret          string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	StorageBaseURL     string
	StorageServiceKey  string
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	MailFrom           string
	SignedURLTTL       time.Duration
	SessionIdleTimeout time.Duration
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxIdle      time.Duration
	DBConnMaxLife      time.Duration
	RequestTimeout     time.Duration
	AllowedOrigins     []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		PostgresDSN:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getInt("REDIS_DB", 0),
		StorageBaseURL:     getEnv("STORAGE_BASE_URL", ""),
		StorageServiceKey:  getEnv("STORAGE_SERVICE_KEY", ""),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getInt("SMTP_PORT", 465),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		MailFrom:           getEnv("MAIL_FROM", ""),
		SignedURLTTL:       getDuration("SIGNED_URL_TTL", time.Hour),
		SessionIdleTimeout: getDuration("SESSION_IDLE_TIMEOUT", time.Hour),
		DBMaxOpenConns:     getInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:     getInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxIdle:      getDuration("DB_CONN_MAX_IDLE", 5*time.Minute),
		DBConnMaxLife:      getDuration("DB_CONN_MAX_LIFE", 30*time.Minute),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 10*time.Second),
		AllowedOrigins:     []string{getEnv("CORS_ALLOWED_ORIGIN", "*")},
	}

	if cfg.PostgresDSN == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.StorageBaseURL == "" {
		log.Fatal("STORAGE_BASE_URL is required")
	}
	if cfg.StorageServiceKey == "" {
		log.Fatal("STORAGE_SERVICE_KEY is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
