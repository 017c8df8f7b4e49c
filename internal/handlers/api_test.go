package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/checkoutprobe/checkoutprobe/internal/models"
)

func TestRunsAPIHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name               string
		method             string
		runs               []*models.Run
		err                error
		expectedStatus     int
		expectedPassed     bool
		expectedRuns       int
		checkErrorResponse bool
	}{
		{
			name:   "latest result per scenario wins",
			method: http.MethodGet,
			// newest first: the latest wechat run passed after an earlier failure
			runs: []*models.Run{
				finished(t, "dynamic-package", "wechat", true),
				finished(t, "dynamic-package", "wechat", false),
				finished(t, "admin-plan-activation", "", true),
			},
			expectedStatus: http.StatusOK,
			expectedPassed: true,
			expectedRuns:   3,
		},
		{
			name:           "latest failure fails the verdict",
			method:         http.MethodGet,
			runs:           []*models.Run{finished(t, "no-balance-order", "balance", false)},
			expectedStatus: http.StatusOK,
			expectedPassed: false,
			expectedRuns:   1,
		},
		{
			name:               "service error",
			method:             http.MethodGet,
			err:                errors.New("database gone"),
			expectedStatus:     http.StatusInternalServerError,
			checkErrorResponse: true,
		},
		{
			name:               "method not allowed - POST",
			method:             http.MethodPost,
			expectedStatus:     http.StatusMethodNotAllowed,
			checkErrorResponse: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockRunService{
				RecentRunsFunc: func(int) ([]*models.Run, error) { return tt.runs, tt.err },
			}
			handler := NewRunsAPIHandler(svc)

			req := httptest.NewRequest(tt.method, "/api/runs", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			if tt.checkErrorResponse {
				var errResp ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
					t.Fatalf("decode error response: %v", err)
				}
				if errResp.Message == "" {
					t.Error("error response should carry a message")
				}
				return
			}

			var resp RunsResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Passed != tt.expectedPassed {
				t.Errorf("passed = %v, want %v", resp.Passed, tt.expectedPassed)
			}
			if len(resp.Runs) != tt.expectedRuns {
				t.Errorf("runs = %d, want %d", len(resp.Runs), tt.expectedRuns)
			}
		})
	}
}
