package models

import (
	"context"
	"errors"
)

// FailureKind classifies why a run failed
type FailureKind string

// Failure kinds
const (
	FailureNone             FailureKind = ""
	FailureTimeout          FailureKind = "timeout"
	FailureElementNotFound  FailureKind = "element_not_found"
	FailureNavigation       FailureKind = "navigation"
	FailureIndicatorMissing FailureKind = "indicator_missing"
	FailureIndicatorFound   FailureKind = "failure_indicator"
	FailurePopup            FailureKind = "popup"
	FailureSetup            FailureKind = "setup"
	FailureUnknown          FailureKind = "unknown"
)

// Failure sentinels wrapped by the browser and runner layers
var (
	ErrTimeout          = errors.New("timed out")
	ErrElementNotFound  = errors.New("element not found")
	ErrNavigation       = errors.New("navigation failed")
	ErrIndicatorMissing = errors.New("success indicator not found")
	ErrFailureIndicator = errors.New("failure indicator found")
	ErrPopup            = errors.New("popup window not handled")
	ErrSetup            = errors.New("setup failed")
)

// Classify maps an error chain onto a FailureKind
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrFailureIndicator):
		return FailureIndicatorFound
	case errors.Is(err, ErrIndicatorMissing):
		return FailureIndicatorMissing
	case errors.Is(err, ErrPopup):
		return FailurePopup
	case errors.Is(err, ErrElementNotFound):
		return FailureElementNotFound
	case errors.Is(err, ErrNavigation):
		return FailureNavigation
	case errors.Is(err, ErrSetup):
		return FailureSetup
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureUnknown
	}
}
