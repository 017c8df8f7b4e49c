package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every HTML template renders
type Page struct {
	Title     string
	Generated time.Time
	Runs      []*models.Run
	Run       *models.Run
	AllPassed bool
	Totals    string
}

// NewPage builds page data for a set of runs
func NewPage(title string, runs []*models.Run, generated time.Time) Page {
	summary := summarize(runs)
	return Page{
		Title:     title,
		Generated: generated,
		Runs:      runs,
		AllPassed: summary.AllPassed(),
		Totals:    totals(summary),
	}
}

// Templates parses the embedded templates. linkRuns makes run links point at
// /runs?reference= rather than anchors in the same document, and screenshot
// links point at the report server.
func Templates(linkRuns bool) (*template.Template, error) {
	funcMap := template.FuncMap{
		"statusText":     StatusText,
		"failureMessage": FailureMessage,
		"duration":       FormatDuration,
		"inc":            func(i int) int { return i + 1 },
		"runLink": func(reference string) string {
			if linkRuns {
				return "/runs?reference=" + url.QueryEscape(reference)
			}
			return "#" + reference
		},
		// the report server serves screenshots by file name under /screenshots/
		"screenshotLink": func(path string) string {
			if linkRuns {
				return "/screenshots/" + url.PathEscape(filepath.Base(path))
			}
			return path
		},
	}

	tmpl, err := template.New("checkoutprobe").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl, nil
}

// WriteHTML writes a standalone HTML report of runs to w
func WriteHTML(w io.Writer, runs []*models.Run, generated time.Time) error {
	tmpl, err := Templates(false)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, "report", NewPage("Checkout Probe Report", runs, generated))
}
