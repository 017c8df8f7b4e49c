// Package scenario describes the checkout flows as ordered steps over catalog keys.
package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/catalog"
)

// StepKind is the browser action a step performs
type StepKind string

// Step kinds
const (
	KindNavigate StepKind = "navigate"
	KindClick    StepKind = "click"
	KindInput    StepKind = "input"
	KindSelect   StepKind = "select"
	KindWait     StepKind = "wait"
	KindSleep    StepKind = "sleep"
	KindExpect   StepKind = "expect"
	KindPopup    StepKind = "popup"
)

// Base selects which root URL a navigate step is relative to
type Base int

// URL bases
const (
	BaseSite Base = iota
	BaseAdmin
)

// Step is one action in a scenario. Target, ValueKey, Want and Reject name
// catalog entries rather than raw selectors or text.
type Step struct {
	Name     string
	Kind     StepKind
	Target   string
	Base     Base
	Value    string
	ValueKey string
	Want     []string
	Reject   []string
	Timeout  time.Duration
	Pause    time.Duration
	Optional bool
}

// Scenario is a named checkout flow
type Scenario struct {
	Name          string
	Description   string
	PaymentMethod PaymentMethod
	Steps         []Step
}

// Label matches models.Run.Label for the same scenario
func (s Scenario) Label() string {
	if s.PaymentMethod == "" {
		return s.Name
	}
	return s.Name + " (" + string(s.PaymentMethod) + ")"
}

// Validate checks every catalog key the scenario refers to, so a missing
// selector is reported before a browser is launched.
func (s Scenario) Validate(c *catalog.Catalog) error {
	var errs []error
	for i, st := range s.Steps {
		where := fmt.Sprintf("%s step %d (%s)", s.Name, i+1, st.Name)
		switch st.Kind {
		case KindNavigate:
			if _, err := c.Path(st.Target); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
		case KindClick, KindWait, KindInput, KindSelect, KindPopup:
			if _, err := c.Selector(st.Target); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
		case KindSleep, KindExpect:
		default:
			errs = append(errs, fmt.Errorf("%s: unknown step kind %q", where, st.Kind))
		}
		if st.ValueKey != "" {
			if _, err := c.Value(st.ValueKey); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
		}
		for _, key := range append(append([]string(nil), st.Want...), st.Reject...) {
			if _, err := c.Indicators(key); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
		}
		if (st.Kind == KindExpect || st.Kind == KindPopup) && len(st.Want) == 0 {
			errs = append(errs, fmt.Errorf("%s: no success indicator", where))
		}
	}
	return errors.Join(errs...)
}
