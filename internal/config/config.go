// Package config loads configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds the alert API daemon configuration.
type ServerConfig struct {
	Addr          string
	DBPath        string
	SessionTTL    time.Duration
	CorsOrigins   []string
	IngestPerMin  int
	IngestBurst   int
	AlertsLimit   int
	DefaultRadius float64
}

// ClientConfig holds the watcher CLI configuration.
type ClientConfig struct {
	ServerURL string
	AccessKey string
}

// LoadServer reads the daemon configuration from the environment.
func LoadServer() ServerConfig {
	return ServerConfig{
		Addr:          getEnv("WILDWATCH_ADDR", ":5000"),
		DBPath:        getEnv("WILDWATCH_DB_PATH", "wildwatch.db"),
		SessionTTL:    getEnvAsDuration("WILDWATCH_SESSION_TTL", 24*time.Hour),
		CorsOrigins:   getEnvAsSlice("WILDWATCH_CORS_ORIGINS", []string{"*"}),
		IngestPerMin:  getEnvAsInt("WILDWATCH_INGEST_PER_MINUTE", 60),
		IngestBurst:   getEnvAsInt("WILDWATCH_INGEST_BURST", 10),
		AlertsLimit:   getEnvAsInt("WILDWATCH_ALERTS_LIMIT", 100),
		DefaultRadius: getEnvAsFloat("WILDWATCH_DEFAULT_RADIUS_KM", 5),
	}
}

// LoadClient reads the watcher configuration from the environment.
func LoadClient() ClientConfig {
	return ClientConfig{
		ServerURL: getEnv("WILDWATCH_SERVER_URL", "http://localhost:5000"),
		AccessKey: getEnv("WILDWATCH_ACCESS_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	return strings.Split(value, ",")
}
