package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const maxBatchSize = 1000

// Config holds all service settings, populated from environment variables.
// Everything is read once at startup; there is no hot reload.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Downstream AWS resources.
	ReadingsTable   string
	EventBusName    string
	MetricNamespace string
	AWSEndpoint     string // optional override for local stacks

	AlertThreshold int
	Environment    string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	flushInterval, err := parseDuration("BATCH_FLUSH_INTERVAL", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	threshold, err := parseAlertThreshold()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "sensor-telemetry"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "traffic-ingest"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ReadingsTable:   envOrDefault("READINGS_TABLE", "traffic-readings"),
		EventBusName:    envOrDefault("EVENT_BUS_NAME", "default"),
		MetricNamespace: envOrDefault("METRIC_NAMESPACE", "TrafficMonitoring"),
		AWSEndpoint:     os.Getenv("AWS_ENDPOINT_URL"),

		AlertThreshold: threshold,
		Environment:    envOrDefault("ENVIRONMENT", "dev"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.ReadingsTable == "" {
		return nil, errors.New("READINGS_TABLE is required")
	}
	if cfg.EventBusName == "" {
		return nil, errors.New("EVENT_BUS_NAME is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	raw := envOrDefault("BATCH_SIZE", "50")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxBatchSize {
		return 0, fmt.Errorf("invalid BATCH_SIZE: %q (want 1-%d)", raw, maxBatchSize)
	}
	return n, nil
}

func parseAlertThreshold() (int, error) {
	raw := envOrDefault("ALERT_THRESHOLD", "80")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 100 {
		return 0, fmt.Errorf("invalid ALERT_THRESHOLD: %q (want 0-100)", raw)
	}
	return n, nil
}
