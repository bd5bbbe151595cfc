package config

import (
	"os"
	"time"
)

type Config struct {
	Mode                 string
	Port                 string
	Environment          string
	ReplayFile           string
	OTelServiceName      string
	OTelEndpoint         string
	MetricExportInterval time.Duration
	ShutdownTimeout      time.Duration
}

func Load() *Config {
	return &Config{
		Mode:                 envOr("APP_MODE", "cli"),
		Port:                 envOr("APP_PORT", "8080"),
		Environment:          envOr("APP_ENV", "development"),
		ReplayFile:           os.Getenv("REPLAY_FILE"),
		OTelServiceName:      envOr("OTEL_SERVICE_NAME", "garage-tracker"),
		OTelEndpoint:         envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		MetricExportInterval: envOrDuration("OTEL_METRIC_EXPORT_INTERVAL", 5*time.Second),
		ShutdownTimeout:      envOrDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
