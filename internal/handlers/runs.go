package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/report"
	"github.com/checkoutprobe/checkoutprobe/internal/services"
)

// defaultLimit caps the run list when no ?limit is given
const defaultLimit = 50

// RunsHandler renders the recent run list
type RunsHandler struct {
	template   *template.Template
	runService services.RunService
}

// NewRunsHandler creates a new RunsHandler
func NewRunsHandler(tmpl *template.Template, runService services.RunService) *RunsHandler {
	return &RunsHandler{
		template:   tmpl,
		runService: runService,
	}
}

// parseLimit reads ?limit, falling back to defaultLimit
func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 500 {
		return defaultLimit
	}
	return limit
}

// ServeHTTP handles the GET / request
func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	runs, err := h.runService.RecentRuns(r.Context(), parseLimit(r))
	if errors.Is(err, services.ErrHistoryDisabled) {
		http.Error(w, "Run history is disabled", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		log.Printf("Error listing runs: %v", err)
		http.Error(w, "Failed to load runs", http.StatusInternalServerError)
		return
	}

	page := report.NewPage("Checkout Probe Runs", runs, time.Now())
	if err := h.template.ExecuteTemplate(w, "runs", page); err != nil {
		log.Printf("Error rendering template: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
