package config

import (
	"fmt"
	"net/url"
	"strings"
)

// SiteConfig describes the shop under test and where its session material lives
type SiteConfig struct {
	BaseURL       string
	AdminURL      string
	CookieFile    string
	CatalogFile   string
	StrictCookies bool
}

// LoadSiteConfig loads target site configuration from environment variables
func LoadSiteConfig(getenv func(string) string) (*SiteConfig, error) {
	config := &SiteConfig{
		BaseURL:     strings.TrimRight(getenv("SITE_BASE_URL"), "/"),
		AdminURL:    strings.TrimRight(getenv("SITE_ADMIN_URL"), "/"),
		CookieFile:  getenv("COOKIE_FILE"),
		CatalogFile: getenv("CATALOG_FILE"),
	}

	// Validate required fields
	if config.BaseURL == "" {
		return nil, fmt.Errorf("SITE_BASE_URL is required")
	}
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return nil, fmt.Errorf("SITE_BASE_URL is not a valid URL: %w", err)
	}
	if config.CookieFile == "" {
		return nil, fmt.Errorf("COOKIE_FILE is required")
	}
	if config.AdminURL == "" {
		config.AdminURL = config.BaseURL + "/admin"
	}

	strict, err := parseBool(getenv, "STRICT_COOKIES", false)
	if err != nil {
		return nil, err
	}
	config.StrictCookies = strict

	return config, nil
}

// URL joins a site-relative path onto the base URL. Absolute URLs pass through.
func (c *SiteConfig) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

// Admin joins a path onto the admin panel URL. Absolute URLs pass through.
func (c *SiteConfig) Admin(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.AdminURL + path
}

// Host returns the host part of the base URL, used as the default cookie domain
func (c *SiteConfig) Host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
