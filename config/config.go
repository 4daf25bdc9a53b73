package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultServerURL    = "http://localhost:5000"
	DefaultPollInterval = 3 * time.Second
)

type Config struct {
	// Client side
	ServerURL    string
	APIToken     string
	PollInterval time.Duration
	DatasetsFile string

	// Backend side
	Port          string
	UploadDir     string
	RequireToken  bool
	ProcessBucket string

	// S3 access for the backend
	ApiURL    string
	AccessKey string
	SecretKey string
	Region    string

	LogLevel string
	LogFile  string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, using environment variables only")
	}

	config := &Config{
		ServerURL:     getEnv("EIRA_SERVER_URL", DefaultServerURL),
		APIToken:      getEnv("EIRA_API_TOKEN", ""),
		PollInterval:  getDuration("EIRA_POLL_INTERVAL", DefaultPollInterval),
		DatasetsFile:  getEnv("DATASETS_FILE", ""),
		Port:          getEnv("EIRA_PORT", "5000"),
		UploadDir:     getEnv("EIRA_UPLOAD_DIR", "./uploads"),
		RequireToken:  getBool("EIRA_REQUIRE_TOKEN", false),
		ProcessBucket: getEnv("EIRA_PROCESS_BUCKET", "eira1-general-dataset"),
		ApiURL:        getEnv("API_URL", ""),
		AccessKey:     getEnv("ACCESS_KEY", ""),
		SecretKey:     getEnv("SECRET_KEY", ""),
		Region:        getEnv("REGION", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return b
}

// getDuration accepts Go duration strings ("3s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
	return defaultValue
}
