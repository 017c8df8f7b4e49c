package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/report"
	"github.com/checkoutprobe/checkoutprobe/internal/scenario"
	"github.com/checkoutprobe/checkoutprobe/internal/services"
)

// ErrSuiteFailed is returned when at least one scenario did not pass
var ErrSuiteFailed = errors.New("checkout suite failed")

// BrowserSession is a launched browser that hands out pages. *browser.Session satisfies it.
type BrowserSession interface {
	services.PageOpener
	Close() error
}

// RunDependencies holds all dependencies needed for one suite execution
type RunDependencies struct {
	RunService services.RunService
	Scenarios  []scenario.Scenario
	// Launch starts a fresh browser for every execution
	Launch func() (BrowserSession, error)
	Out    io.Writer
	// ReportPath and MarkdownPath are written after the run when set
	ReportPath   string
	MarkdownPath string
}

// RunSuite launches a browser, runs the selected scenarios, prints the summary
// and writes the requested reports. It returns ErrSuiteFailed when any scenario
// failed; other errors mean the suite could not be run or recorded.
func RunSuite(ctx context.Context, deps RunDependencies) (*services.RunResult, error) {
	if len(deps.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios selected")
	}
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	log.Printf("Running %d scenario(s)", len(deps.Scenarios))

	session, err := deps.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Printf("Warning: %v", err)
		}
	}()

	result, runErr := deps.RunService.RunAll(ctx, session, deps.Scenarios)
	if result == nil {
		return nil, runErr
	}
	if runErr != nil {
		log.Printf("Warning: failed to record run history: %v", runErr)
	}

	fmt.Fprintln(out)
	report.PrintSummary(out, result.Runs)

	if err := writeReports(deps, result, time.Now()); err != nil {
		return result, err
	}

	if !result.Summary.AllPassed() {
		return result, fmt.Errorf("%w: %v", ErrSuiteFailed, result.Summary.Failed())
	}
	return result, nil
}

func writeReports(deps RunDependencies, result *services.RunResult, generated time.Time) error {
	if deps.ReportPath != "" {
		err := writeFile(deps.ReportPath, func(w io.Writer) error {
			return report.WriteHTML(w, result.Runs, generated)
		})
		if err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		log.Printf("HTML report written to %s", deps.ReportPath)
	}
	if deps.MarkdownPath != "" {
		err := writeFile(deps.MarkdownPath, func(w io.Writer) error {
			return report.WriteMarkdown(w, result.Runs, generated)
		})
		if err != nil {
			return fmt.Errorf("failed to write markdown report: %w", err)
		}
		log.Printf("Markdown report written to %s", deps.MarkdownPath)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
