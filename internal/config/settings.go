package config

import (
	"os"
	"strings"
	"time"
)

// Settings holds host-level embed settings for one widget instance.
// The API key is the tenant credential from the embed surface; without
// it the enhanced widget refuses to start.
type Settings struct {
	APIBase            string
	APIKey             string
	LogLevel           string
	Port               string
	HTTPTimeout        time.Duration
	PopupDelay         time.Duration
	LeadPromptDelay    time.Duration
	CORSAllowedOrigins []string
}

// Load reads settings from environment variables
func Load() *Settings {
	return &Settings{
		APIBase:            getEnv("CONCIERGE_API_BASE", "http://localhost:8080"),
		APIKey:             getEnv("CONCIERGE_API_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnv("PORT", "8080"),
		HTTPTimeout:        getEnvAsDuration("CONCIERGE_HTTP_TIMEOUT", 30*time.Second),
		PopupDelay:         getEnvAsDuration("CONCIERGE_POPUP_DELAY", 10*time.Second),
		LeadPromptDelay:    getEnvAsDuration("CONCIERGE_LEAD_PROMPT_DELAY", time.Second),
		CORSAllowedOrigins: getEnvAsList("CONCIERGE_CORS_ORIGINS", []string{"*"}),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
