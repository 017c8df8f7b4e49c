package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/report"
	"github.com/checkoutprobe/checkoutprobe/internal/repository"
	"github.com/checkoutprobe/checkoutprobe/internal/services"
)

// RunHandler renders one run with its steps
type RunHandler struct {
	template   *template.Template
	runService services.RunService
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(tmpl *template.Template, runService services.RunService) *RunHandler {
	return &RunHandler{
		template:   tmpl,
		runService: runService,
	}
}

// ServeHTTP handles the GET /runs?reference= request
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reference := r.URL.Query().Get("reference")
	if reference == "" {
		http.Error(w, "Missing run reference", http.StatusBadRequest)
		return
	}

	run, err := h.runService.GetRun(r.Context(), reference)
	switch {
	case errors.Is(err, repository.ErrRunNotFound):
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	case errors.Is(err, services.ErrHistoryDisabled):
		http.Error(w, "Run history is disabled", http.StatusServiceUnavailable)
		return
	case err != nil:
		log.Printf("Error loading run %s: %v", reference, err)
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}

	page := report.Page{
		Title:     run.Label(),
		Generated: time.Now(),
		Run:       run,
	}
	if err := h.template.ExecuteTemplate(w, "run", page); err != nil {
		log.Printf("Error rendering template: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
