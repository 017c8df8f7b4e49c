package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/config"
)

// Notifier publishes the outcome of a batch of runs
type Notifier interface {
	Notify(ctx context.Context, result *RunResult) error
}

// HTTPNotifier posts run results as JSON to a webhook
type HTTPNotifier struct {
	config     config.NotifyConfig
	httpClient *http.Client
}

// NewNotifier creates a webhook notifier, or nil when no webhook is configured
func NewNotifier(cfg config.NotifyConfig) Notifier {
	if !cfg.Enabled() {
		return nil
	}
	return &HTTPNotifier{
		config:     cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyPayload is the webhook request body
type NotifyPayload struct {
	Passed  bool            `json:"passed"`
	Total   int             `json:"total"`
	Failed  []string        `json:"failed"`
	Results map[string]bool `json:"results"`
	Runs    []NotifyRun     `json:"runs"`
}

// NotifyRun is one run inside a NotifyPayload
type NotifyRun struct {
	Reference   string `json:"reference"`
	Scenario    string `json:"scenario"`
	Method      string `json:"paymentMethod,omitempty"`
	Status      string `json:"status"`
	FailureKind string `json:"failureKind,omitempty"`
	Message     string `json:"message,omitempty"`
	DurationMS  int64  `json:"durationMs"`
}

// BuildPayload converts a run result into a webhook body
func BuildPayload(result *RunResult) NotifyPayload {
	payload := NotifyPayload{
		Passed:  result.Summary.AllPassed(),
		Total:   result.Summary.Len(),
		Failed:  result.Summary.Failed(),
		Results: result.Summary.Results(),
	}
	if payload.Failed == nil {
		payload.Failed = []string{}
	}
	for _, run := range result.Runs {
		if run == nil {
			continue
		}
		payload.Runs = append(payload.Runs, NotifyRun{
			Reference:   run.Reference,
			Scenario:    run.Scenario,
			Method:      run.PaymentMethod,
			Status:      string(run.Status),
			FailureKind: string(run.FailureKind),
			Message:     run.Message,
			DurationMS:  run.Duration().Milliseconds(),
		})
	}
	return payload
}

// Notify posts the result to the configured webhook
func (n *HTTPNotifier) Notify(ctx context.Context, result *RunResult) error {
	reqBody, err := json.Marshal(BuildPayload(result))
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.config.APIKey != "" {
		req.Header.Set("X-API-Key", n.config.APIKey)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Webhook error (status %d): %s", resp.StatusCode, string(body))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	log.Printf("Run notification sent (status %d)", resp.StatusCode)
	return nil
}
