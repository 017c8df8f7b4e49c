package config

import (
	"fmt"
	"strconv"
	"time"
)

// BrowserConfig holds configuration for the automated browser session
type BrowserConfig struct {
	Headless      bool
	Timeout       time.Duration
	Debug         bool
	SlowMo        time.Duration
	Retries       int
	RetryDelay    time.Duration
	PopupTimeout  time.Duration
	ScreenshotDir string
	UserAgent     string
}

// Browser defaults
const (
	DefaultBrowserTimeout = 10 * time.Second
	DefaultRetries        = 2
	DefaultRetryDelay     = time.Second
	DefaultPopupTimeout   = 15 * time.Second
)

// LoadBrowserConfig loads browser configuration from environment variables
func LoadBrowserConfig(getenv func(string) string) (*BrowserConfig, error) {
	config := &BrowserConfig{
		Headless:      true,
		Timeout:       DefaultBrowserTimeout,
		Retries:       DefaultRetries,
		RetryDelay:    DefaultRetryDelay,
		PopupTimeout:  DefaultPopupTimeout,
		ScreenshotDir: getenv("SCREENSHOT_DIR"),
		UserAgent:     getenv("USER_AGENT"),
	}

	var err error
	if config.Headless, err = parseBool(getenv, "HEADLESS", config.Headless); err != nil {
		return nil, err
	}
	if config.Debug, err = parseBool(getenv, "DEBUG", false); err != nil {
		return nil, err
	}
	if config.Timeout, err = parseDuration(getenv, "BROWSER_TIMEOUT", config.Timeout); err != nil {
		return nil, err
	}
	if config.SlowMo, err = parseDuration(getenv, "SLOW_MO", 0); err != nil {
		return nil, err
	}
	if config.RetryDelay, err = parseDuration(getenv, "RETRY_DELAY", config.RetryDelay); err != nil {
		return nil, err
	}
	if config.PopupTimeout, err = parseDuration(getenv, "POPUP_TIMEOUT", config.PopupTimeout); err != nil {
		return nil, err
	}
	if raw := getenv("STEP_RETRIES"); raw != "" {
		config.Retries, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("STEP_RETRIES must be an integer: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the browser configuration for unusable values
func (c *BrowserConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("browser timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("step retries cannot be negative, got %d", c.Retries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative, got %s", c.RetryDelay)
	}
	if c.PopupTimeout <= 0 {
		return fmt.Errorf("popup timeout must be positive, got %s", c.PopupTimeout)
	}
	return nil
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}
