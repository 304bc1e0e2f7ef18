package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// R2Config хранит параметры доступа к Cloudflare R2 (флаги команд).
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	FeedBaseURL  string
	FeedAPIKey   string
	SyncInterval time.Duration

	R2 R2Config
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080" // Порт по умолчанию
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	feedBaseURL := os.Getenv("FEED_BASE_URL")
	if feedBaseURL == "" {
		return nil, fmt.Errorf("FEED_BASE_URL environment variable is not set")
	}
	feedAPIKey := os.Getenv("FEED_API_KEY")

	syncIntervalStr := os.Getenv("SYNC_INTERVAL")
	if syncIntervalStr == "" {
		syncIntervalStr = "1m"
	}
	syncInterval, err := time.ParseDuration(syncIntervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_INTERVAL environment variable: %w", err)
	}
	if syncInterval < 10*time.Second {
		return nil, fmt.Errorf("SYNC_INTERVAL must be at least 10s, got %s", syncInterval)
	}

	r2 := R2Config{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	cfg := &Config{
		DatabaseURL:  dbURL,
		JWTSecretKey: jwtKey,
		ServerPort:   port,
		FeedBaseURL:  feedBaseURL,
		FeedAPIKey:   feedAPIKey,
		SyncInterval: syncInterval,
		R2:           r2,
	}

	return cfg, nil
}

// R2Enabled сообщает, заданы ли все обязательные параметры R2.
func (c *Config) R2Enabled() bool {
	r := c.R2
	return r.AccountID != "" && r.AccessKeyID != "" && r.SecretAccessKey != "" && r.BucketName != "" && r.PublicBaseURL != ""
}
