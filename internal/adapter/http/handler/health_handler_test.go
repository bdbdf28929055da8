package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		checks   map[string]CheckFunc
		expected int
	}{
		{name: "all healthy", checks: map[string]CheckFunc{"postgres": ok, "redis": ok}, expected: http.StatusOK},
		{name: "no dependencies", checks: nil, expected: http.StatusOK},
		{name: "redis down", checks: map[string]CheckFunc{"postgres": ok, "redis": down}, expected: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.checks).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestHealthHandler_ReadinessReportsChecks(t *testing.T) {
	rec := httptest.NewRecorder()
	h := NewHealthHandler(map[string]CheckFunc{
		"postgres": func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("missing deadline")
			}
			return nil
		},
	})

	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ready" || body["postgres"] != "ok" {
		t.Fatalf("unexpected readiness body: %v", body)
	}
}
