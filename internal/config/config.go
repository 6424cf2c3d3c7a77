package config

import (
	"fmt"
	"os"
	"strconv"
)

// defaultStreamBuffer is the hand-off channel depth between the record source
// and the engine. The source blocks when the buffer is full, which is the
// pipeline's natural backpressure.
const defaultStreamBuffer = 16

type Config struct {
	StreamBuffer int    // records buffered between the reader and the engine
	LogLevel     string // zap level for diagnostics on stderr
	MetricsAddr  string // optional listen address for /metrics and /health; empty disables
}

func Load() (*Config, error) {
	cfg := &Config{
		StreamBuffer: defaultStreamBuffer,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		MetricsAddr:  os.Getenv("METRICS_ADDR"),
	}

	if v := os.Getenv("STREAM_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("STREAM_BUFFER must be a positive integer, got %q", v)
		}
		cfg.StreamBuffer = n
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
