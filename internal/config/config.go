package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BaseURL        string
	DataDir        string
	LogLevel       string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	PreviewAddr    string
}

// Load reads configuration from the environment, after merging in a .env
// file from the working directory when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BaseURL:        envOr("CLIPSTREAM_BASE_URL", "http://localhost:5000"),
		DataDir:        envOr("CLIPSTREAM_DATA_DIR", defaultDataDir()),
		LogLevel:       envOr("CLIPSTREAM_LOG_LEVEL", "info"),
		RequestTimeout: envDurationOr("CLIPSTREAM_REQUEST_TIMEOUT", 30*time.Second),
		UploadTimeout:  envDurationOr("CLIPSTREAM_UPLOAD_TIMEOUT", 30*time.Minute),
		PreviewAddr:    envOr("CLIPSTREAM_PREVIEW_ADDR", "127.0.0.1:0"),
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.clipstream"
	}
	return "./.clipstream"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
