package ports

import (
	"context"
	"time"
)

// LatencyResult is returned by the delay-based simulation operations.
type LatencyResult struct {
	DelayMs int
	Message string
}

// FlakyResult is returned by the unreliable simulation. When Success is
// false the HTTP layer responds 500. The status code is authoritative;
// the body flag is kept for display convenience.
type FlakyResult struct {
	Success bool
	Message string
	Error   string
}

// ErrorResult is the fixed-shape payload of the always-failing simulation.
type ErrorResult struct {
	Error     string
	Code      string
	Timestamp time.Time
}

// RateLimitResult is the fixed-shape payload of the rate-limit simulation.
type RateLimitResult struct {
	Error      string
	RetryAfter int
}

// SimulationService produces deterministic or randomized latency and error
// behavior for the test endpoints. Delay operations block for the advertised
// duration (or until ctx is cancelled).
type SimulationService interface {
	// Slow waits a uniformly random 2000 to 4999 ms.
	Slow(ctx context.Context) (*LatencyResult, error)
	// Delay waits ms milliseconds, clamped to [0, 10000].
	Delay(ctx context.Context, ms int) (*LatencyResult, error)
	// Unreliable fails with fixed probability 0.5.
	Unreliable(ctx context.Context) *FlakyResult
	// Error always produces a failure payload.
	Error(ctx context.Context) *ErrorResult
	// RateLimit always produces a 429-shaped payload.
	RateLimit(ctx context.Context) *RateLimitResult
}
