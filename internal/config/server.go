package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds settings for the local demo storefront
type ServerConfig struct {
	Port        string
	DeleteDelay time.Duration
	// TotalSkew is added to every rendered cart total. Non-zero values make the store inconsistent on purpose.
	TotalSkew int64
}

// LoadServerConfig loads demo storefront configuration from environment variables
func LoadServerConfig(getenv func(string) string) (ServerConfig, error) {
	delay, err := parseDuration("DEMO_DELETE_DELAY", getenv("DEMO_DELETE_DELAY"), 300*time.Millisecond)
	if err != nil {
		return ServerConfig{}, err
	}

	var skew int64
	if raw := strings.TrimSpace(getenv("DEMO_TOTAL_SKEW")); raw != "" {
		skew, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("DEMO_TOTAL_SKEW must be an integer: %w", err)
		}
	}

	return ServerConfig{
		Port:        valueOrDefault(getenv("PORT"), "8080"),
		DeleteDelay: delay,
		TotalSkew:   skew,
	}, nil
}
