package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Supported browser engines
const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// DefaultBaseURL is the public storefront the checks were written against
const DefaultBaseURL = "https://www.demoblaze.com"

// StorefrontConfig holds settings for driving the storefront under test
type StorefrontConfig struct {
	BaseURL       string
	Browser       string
	Headless      bool
	Timeout       time.Duration
	SettleTimeout time.Duration
	PollInterval  time.Duration
}

// LoadStorefrontConfig loads storefront configuration from environment variables
func LoadStorefrontConfig(getenv func(string) string) (*StorefrontConfig, error) {
	config := &StorefrontConfig{
		BaseURL: strings.TrimRight(valueOrDefault(getenv("CARTCHECK_BASE_URL"), DefaultBaseURL), "/"),
		Browser: strings.ToLower(valueOrDefault(getenv("CARTCHECK_BROWSER"), BrowserChromium)),
	}

	var err error
	if config.Headless, err = parseBool("CARTCHECK_HEADLESS", getenv("CARTCHECK_HEADLESS"), true); err != nil {
		return nil, err
	}
	if config.Timeout, err = parseDuration("CARTCHECK_TIMEOUT", getenv("CARTCHECK_TIMEOUT"), 10*time.Second); err != nil {
		return nil, err
	}
	if config.SettleTimeout, err = parseDuration("CARTCHECK_SETTLE_TIMEOUT", getenv("CARTCHECK_SETTLE_TIMEOUT"), 10*time.Second); err != nil {
		return nil, err
	}
	if config.PollInterval, err = parseDuration("CARTCHECK_POLL_INTERVAL", getenv("CARTCHECK_POLL_INTERVAL"), 250*time.Millisecond); err != nil {
		return nil, err
	}

	// Validate fields
	u, err := url.Parse(config.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("CARTCHECK_BASE_URL must be an absolute http(s) URL, got %q", config.BaseURL)
	}
	switch config.Browser {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		return nil, fmt.Errorf("CARTCHECK_BROWSER must be one of chromium, firefox, webkit, got %q", config.Browser)
	}

	return config, nil
}
