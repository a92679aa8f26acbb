package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/qa-testbed/testbed-api/internal/core/ports"
)

type stubSimulationService struct {
	slowFn       func(ctx context.Context) (*ports.LatencyResult, error)
	delayFn      func(ctx context.Context, ms int) (*ports.LatencyResult, error)
	unreliableFn func(ctx context.Context) *ports.FlakyResult
	errorFn      func(ctx context.Context) *ports.ErrorResult
	rateLimitFn  func(ctx context.Context) *ports.RateLimitResult
}

func (s *stubSimulationService) Slow(ctx context.Context) (*ports.LatencyResult, error) {
	return s.slowFn(ctx)
}

func (s *stubSimulationService) Delay(ctx context.Context, ms int) (*ports.LatencyResult, error) {
	return s.delayFn(ctx, ms)
}

func (s *stubSimulationService) Unreliable(ctx context.Context) *ports.FlakyResult {
	return s.unreliableFn(ctx)
}

func (s *stubSimulationService) Error(ctx context.Context) *ports.ErrorResult {
	return s.errorFn(ctx)
}

func (s *stubSimulationService) RateLimit(ctx context.Context) *ports.RateLimitResult {
	return s.rateLimitFn(ctx)
}

func TestSimulationHandler_Slow(t *testing.T) {
	e := newEcho()
	stub := &stubSimulationService{
		slowFn: func(ctx context.Context) (*ports.LatencyResult, error) {
			return &ports.LatencyResult{DelayMs: 3456, Message: "Response delayed by 3456ms"}, nil
		},
	}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/slow", nil)
	rec := httptest.NewRecorder()

	if err := h.Slow(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["success"] != true || resp["delayMs"] != float64(3456) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestSimulationHandler_Unreliable_Failure(t *testing.T) {
	e := newEcho()
	stub := &stubSimulationService{
		unreliableFn: func(ctx context.Context) *ports.FlakyResult {
			return &ports.FlakyResult{Success: false, Error: "Random failure occurred"}
		},
	}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/unreliable", nil)
	rec := httptest.NewRecorder()

	_ = h.Unreliable(e.NewContext(req, rec))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("failure must surface as 500, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["success"] != false || resp["error"] != "Random failure occurred" || resp["code"] != "UNRELIABLE_ERROR" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestSimulationHandler_Unreliable_Success(t *testing.T) {
	e := newEcho()
	stub := &stubSimulationService{
		unreliableFn: func(ctx context.Context) *ports.FlakyResult {
			return &ports.FlakyResult{Success: true, Message: "Request succeeded! (50% chance)"}
		},
	}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/unreliable", nil)
	rec := httptest.NewRecorder()

	_ = h.Unreliable(e.NewContext(req, rec))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Request succeeded! (50% chance)") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSimulationHandler_Error(t *testing.T) {
	e := newEcho()
	ts := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	stub := &stubSimulationService{
		errorFn: func(ctx context.Context) *ports.ErrorResult {
			return &ports.ErrorResult{Error: "Simulated 500 error", Code: "HTTP_500", Timestamp: ts}
		},
	}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/error", nil)
	rec := httptest.NewRecorder()

	_ = h.Error(e.NewContext(req, rec))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "Simulated 500 error" || resp["code"] != "HTTP_500" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestSimulationHandler_Delay_PassesQueryParam(t *testing.T) {
	e := newEcho()
	stub := &stubSimulationService{
		delayFn: func(ctx context.Context, ms int) (*ports.LatencyResult, error) {
			if ms != 2500 {
				t.Fatalf("expected ms=2500, got %d", ms)
			}
			return &ports.LatencyResult{DelayMs: ms, Message: "Response delayed by 2500ms"}, nil
		},
	}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/delay?ms=2500", nil)
	rec := httptest.NewRecorder()

	if err := h.Delay(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSimulationHandler_Delay_DefaultsWhenAbsent(t *testing.T) {
	e := newEcho()
	stub := &stubSimulationService{
		delayFn: func(ctx context.Context, ms int) (*ports.LatencyResult, error) {
			if ms != defaultDelayMs {
				t.Fatalf("expected default %d, got %d", defaultDelayMs, ms)
			}
			return &ports.LatencyResult{DelayMs: ms}, nil
		},
	}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/delay", nil)
	rec := httptest.NewRecorder()
	_ = h.Delay(e.NewContext(req, rec))
}

func TestSimulationHandler_RateLimit(t *testing.T) {
	e := newEcho()
	stub := &stubSimulationService{
		rateLimitFn: func(ctx context.Context) *ports.RateLimitResult {
			return &ports.RateLimitResult{Error: "Rate limit exceeded", RetryAfter: 2}
		},
	}
	h := NewSimulationHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/ratelimit", nil)
	rec := httptest.NewRecorder()

	_ = h.RateLimit(e.NewContext(req, rec))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After header 2, got %q", got)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["retryAfter"] != float64(2) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
