package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings, populated from environment variables.
// cmd/main loads a .env file first via godotenv, so local development only
// needs a .env next to the binary.
type Config struct {
	ListenAddr string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	UploadDir     string
	UploadBaseURL string
	LocaleDir     string
	DefaultLang   string
}

// Load reads the configuration from the environment, applying development
// defaults for anything unset.
func Load() *Config {
	return &Config{
		ListenAddr: getenv("LISTEN_ADDR", ":8080"),

		DBHost:     getenv("DB_HOST", "localhost"),
		DBUser:     getenv("DB_USER", "user"),
		DBPassword: getenv("DB_PASSWORD", "password"),
		DBName:     getenv("DB_NAME", "preloveddb"),
		DBPort:     getenv("DB_PORT", "5432"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		JWTAccessSecret:  getenv("JWT_ACCESS_SECRET", "dev-access-secret"),
		JWTRefreshSecret: getenv("JWT_REFRESH_SECRET", "dev-refresh-secret"),
		AccessTokenTTL:   time.Duration(getint("ACCESS_TOKEN_MIN", 120)) * time.Minute,
		RefreshTokenTTL:  time.Duration(getint("REFRESH_TOKEN_DAYS", 14)) * 24 * time.Hour,

		UploadDir:     getenv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL: getenv("UPLOAD_BASE_URL", "http://localhost:8080/uploads"),
		LocaleDir:     getenv("LOCALE_DIR", "./locales"),
		DefaultLang:   getenv("DEFAULT_LANG", "ko"),
	}
}

// DSN builds the Postgres connection string for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
