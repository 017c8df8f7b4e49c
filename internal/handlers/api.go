package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/models"
	"github.com/checkoutprobe/checkoutprobe/internal/services"
)

// RunsAPIHandler serves recent runs as JSON for dashboards and alerting
type RunsAPIHandler struct {
	runService services.RunService
}

// NewRunsAPIHandler creates a new RunsAPIHandler
func NewRunsAPIHandler(runService services.RunService) *RunsAPIHandler {
	return &RunsAPIHandler{runService: runService}
}

// RunResponse is one run in the API response
type RunResponse struct {
	Reference     string    `json:"reference"`
	Scenario      string    `json:"scenario"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
	Status        string    `json:"status"`
	FailureKind   string    `json:"failureKind,omitempty"`
	Message       string    `json:"message,omitempty"`
	Steps         int       `json:"steps"`
	DurationMS    int64     `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RunsResponse represents the response sent to the client
type RunsResponse struct {
	Passed bool          `json:"passed"`
	Runs   []RunResponse `json:"runs"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newRunResponse(run *models.Run) RunResponse {
	return RunResponse{
		Reference:     run.Reference,
		Scenario:      run.Scenario,
		PaymentMethod: run.PaymentMethod,
		Status:        string(run.Status),
		FailureKind:   string(run.FailureKind),
		Message:       run.Message,
		Steps:         len(run.Steps),
		DurationMS:    run.Duration().Milliseconds(),
		CreatedAt:     run.CreatedAt,
	}
}

// ServeHTTP handles the GET /api/runs request
func (h *RunsAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runs, err := h.runService.RecentRuns(r.Context(), parseLimit(r))
	if errors.Is(err, services.ErrHistoryDisabled) {
		sendErrorResponse(w, "Run history is disabled", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		log.Printf("Error listing runs: %v", err)
		sendErrorResponse(w, "Failed to load runs", http.StatusInternalServerError)
		return
	}

	// the latest result per scenario decides the overall verdict
	latest := models.NewSummary()
	resp := RunsResponse{Runs: make([]RunResponse, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, newRunResponse(run))
		if !slices.Contains(latest.Labels(), run.Label()) && run.IsFinished() {
			latest.RecordRun(run)
		}
	}
	resp.Passed = latest.AllPassed()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// sendErrorResponse sends a JSON error response
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
