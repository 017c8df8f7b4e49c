package models

import (
	"errors"
	"time"
)

// SessionCookie is one captured cookie replayed into the browser to reuse a logged-in session
type SessionCookie struct {
	Name     string `yaml:"name" json:"name"`
	Value    string `yaml:"value" json:"value"`
	Domain   string `yaml:"domain,omitempty" json:"domain,omitempty"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Secure   bool   `yaml:"secure,omitempty" json:"secure,omitempty"`
	HTTPOnly bool   `yaml:"httpOnly,omitempty" json:"httpOnly,omitempty"`
	Expiry   int64  `yaml:"expiry,omitempty" json:"expiry,omitempty"`
}

// Cookie validation errors
var (
	ErrCookieName  = errors.New("cookie name cannot be empty")
	ErrCookieValue = errors.New("cookie value cannot be empty")
)

// Validate checks that the cookie can be injected
func (c SessionCookie) Validate() error {
	if c.Name == "" {
		return ErrCookieName
	}
	if c.Value == "" {
		return ErrCookieValue
	}
	return nil
}

// Expired reports whether the cookie carries an expiry that is already past
func (c SessionCookie) Expired(now time.Time) bool {
	return c.Expiry > 0 && time.Unix(c.Expiry, 0).Before(now)
}
