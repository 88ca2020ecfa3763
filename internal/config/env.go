package config

import (
	"os"
	"strconv"
)

// Telemetry selects tracing and metrics outputs.
type Telemetry struct {
	ServiceName  string
	Exporter     string // none, stdout or otlp
	OTLPEndpoint string
	OTLPInsecure bool
	MetricsFile  string // node-exporter textfile; empty disables
}

// Storage holds object store credentials for bucket uploads.
type Storage struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string // empty lets the server decide
	UseSSL    bool
}

// LoadTelemetry reads telemetry settings from the environment.
func LoadTelemetry() Telemetry {
	return Telemetry{
		ServiceName:  env("GGPICTURE_SERVICE_NAME", "ggpicture"),
		Exporter:     env("GGPICTURE_TRACE", "none"),
		OTLPEndpoint: env("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTLPInsecure: envBool("GGPICTURE_OTLP_INSECURE", true),
		MetricsFile:  env("GGPICTURE_METRICS_FILE", ""),
	}
}

// LoadStorage reads object store settings from the environment.
func LoadStorage() Storage {
	return Storage{
		Endpoint:  env("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: env("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: env("MINIO_SECRET_KEY", "minioadmin"),
		Region:    env("MINIO_REGION", ""),
		UseSSL:    envBool("MINIO_USE_SSL", false),
	}
}

func env(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
