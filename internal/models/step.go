package models

import "time"

// StepResult records the outcome of one scripted browser step
type StepResult struct {
	Name       string
	Passed     bool
	Skipped    bool
	Attempts   int
	Duration   time.Duration
	Error      string
	Screenshot string
}
