package session

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/models"
	"github.com/playwright-community/playwright-go"
	"gopkg.in/yaml.v3"
)

// Cookie file errors
var (
	ErrNoCookies     = errors.New("cookie file contains no cookies")
	ErrCookieExpired = errors.New("session cookie expired")
)

// cookieFile accepts either a bare list or a {cookies: [...]} document.
// YAML is a superset of JSON so browser exports load unchanged.
type cookieFile struct {
	Cookies []models.SessionCookie `yaml:"cookies"`
}

// LoadCookies reads captured session cookies from a YAML or JSON file.
// Expired cookies fail the load when strict is set and are only logged otherwise.
func LoadCookies(path string, strict bool) ([]models.SessionCookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}
	return ParseCookies(data, strict, time.Now())
}

// ParseCookies decodes and validates a cookie document
func ParseCookies(data []byte, strict bool, now time.Time) ([]models.SessionCookie, error) {
	var cookies []models.SessionCookie
	if err := yaml.Unmarshal(data, &cookies); err != nil {
		var doc cookieFile
		if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
			return nil, fmt.Errorf("failed to parse cookie file: %w", err)
		}
		cookies = doc.Cookies
	}

	if len(cookies) == 0 {
		return nil, ErrNoCookies
	}

	for i, c := range cookies {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("cookie %d: %w", i, err)
		}
		if c.Expired(now) {
			if strict {
				return nil, fmt.Errorf("%w: %s expired at %s", ErrCookieExpired, c.Name, time.Unix(c.Expiry, 0).Format(time.RFC3339))
			}
			log.Printf("Warning: session cookie %s expired at %s, login may fail", c.Name, time.Unix(c.Expiry, 0).Format(time.RFC3339))
		}
	}

	return cookies, nil
}

// ToPlaywright converts session cookies for injection into a browser context.
// Cookies without a domain are scoped to defaultDomain; missing paths become "/".
func ToPlaywright(cookies []models.SessionCookie, defaultDomain string) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = defaultDomain
		}
		path := c.Path
		if path == "" {
			path = "/"
		}

		pc := playwright.OptionalCookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: playwright.String(domain),
			Path:   playwright.String(path),
		}
		if c.Secure {
			pc.Secure = playwright.Bool(true)
		}
		if c.HTTPOnly {
			pc.HttpOnly = playwright.Bool(true)
		}
		if c.Expiry > 0 {
			pc.Expires = playwright.Float(float64(c.Expiry))
		}
		out = append(out, pc)
	}
	return out
}
