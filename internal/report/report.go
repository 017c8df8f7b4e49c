// Package report renders scenario runs for people: a console table after a
// run, markdown and standalone HTML files, and the pages of the report server.
package report

import (
	"fmt"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/models"
)

// FailureMessage returns a readable explanation for a failure kind
func FailureMessage(kind models.FailureKind) string {
	switch kind {
	case models.FailureNone:
		return ""
	case models.FailureTimeout:
		return "The page did not respond within the configured timeout."
	case models.FailureElementNotFound:
		return "An expected element was missing. The page layout may have changed; check the selector catalog."
	case models.FailureNavigation:
		return "The page could not be loaded. Check the site URL and network access."
	case models.FailureIndicatorMissing:
		return "No success message appeared after the last action."
	case models.FailureIndicatorFound:
		return "The site showed a failure message."
	case models.FailurePopup:
		return "The payment tab did not open or did not show the expected cashier."
	case models.FailureSetup:
		return "The run could not start. Check the browser install, cookies and catalog."
	default:
		return "The scenario failed for an unexpected reason."
	}
}

// StatusText is the short verdict shown next to a run
func StatusText(run *models.Run) string {
	switch run.Status {
	case models.RunStatusPassed:
		return "PASS"
	case models.RunStatusFailed:
		return "FAIL"
	case models.RunStatusError:
		return "ERROR"
	default:
		return "RUNNING"
	}
}

// FormatDuration rounds d for display
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func summarize(runs []*models.Run) *models.Summary {
	summary := models.NewSummary()
	for _, run := range runs {
		if run != nil {
			summary.RecordRun(run)
		}
	}
	return summary
}

func failedStep(run *models.Run) *models.StepResult {
	for i := len(run.Steps) - 1; i >= 0; i-- {
		if !run.Steps[i].Passed && !run.Steps[i].Skipped {
			return &run.Steps[i]
		}
	}
	return nil
}

func totals(summary *models.Summary) string {
	return fmt.Sprintf("%d/%d passed", summary.Len()-len(summary.Failed()), summary.Len())
}
