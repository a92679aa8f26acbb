package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qa-testbed/testbed-api/internal/core/ports"
)

const (
	slowMinDelayMs = 2000
	slowSpanMs     = 3000
	maxDelayMs     = 10000

	flakyFailureRate    = 0.5
	rateLimitRetryAfter = 2
)

// Sleeper abstracts blocking waits so tests can run without wall-clock
// delays. The default implementation honors context cancellation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// RealSleeper waits on a timer, aborting early when ctx is cancelled.
func RealSleeper() Sleeper {
	return SleeperFunc(func(ctx context.Context, d time.Duration) error {
		if d <= 0 {
			return ctx.Err()
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	})
}

// SimulationService implements the deliberately slow/flaky/broken endpoint
// behaviors. Randomness flows through a single injected source so tests can
// pin outcomes with a fixed seed.
type SimulationService struct {
	mu      sync.Mutex // rand.Rand is not safe for concurrent use
	rng     *rand.Rand
	sleeper Sleeper
	logger  zerolog.Logger
	now     func() time.Time
}

func NewSimulationService(rng *rand.Rand, sleeper Sleeper, logger zerolog.Logger) *SimulationService {
	if sleeper == nil {
		sleeper = RealSleeper()
	}
	return &SimulationService{
		rng:     rng,
		sleeper: sleeper,
		logger:  logger,
		now:     time.Now,
	}
}

// Slow waits a uniformly random delay in [2000, 5000) ms.
func (s *SimulationService) Slow(ctx context.Context) (*ports.LatencyResult, error) {
	delayMs := slowMinDelayMs + s.intn(slowSpanMs)

	s.logger.Debug().Int("delay_ms", delayMs).Msg("simulating slow response")
	if err := s.sleeper.Sleep(ctx, time.Duration(delayMs)*time.Millisecond); err != nil {
		return nil, err
	}

	return &ports.LatencyResult{
		DelayMs: delayMs,
		Message: fmt.Sprintf("Response delayed by %dms", delayMs),
	}, nil
}

// Delay waits exactly ms milliseconds, clamped to [0, 10000].
func (s *SimulationService) Delay(ctx context.Context, ms int) (*ports.LatencyResult, error) {
	delayMs := clamp(ms, 0, maxDelayMs)

	if err := s.sleeper.Sleep(ctx, time.Duration(delayMs)*time.Millisecond); err != nil {
		return nil, err
	}

	return &ports.LatencyResult{
		DelayMs: delayMs,
		Message: fmt.Sprintf("Response delayed by %dms", delayMs),
	}, nil
}

// Unreliable fails with fixed probability 0.5, independent per call.
func (s *SimulationService) Unreliable(ctx context.Context) *ports.FlakyResult {
	if s.float64() < flakyFailureRate {
		return &ports.FlakyResult{
			Success: false,
			Error:   "Random failure occurred",
		}
	}

	successRate := int((1 - flakyFailureRate) * 100)
	return &ports.FlakyResult{
		Success: true,
		Message: fmt.Sprintf("Request succeeded! (%d%% chance)", successRate),
	}
}

// Error always produces a 500-shaped failure payload.
func (s *SimulationService) Error(ctx context.Context) *ports.ErrorResult {
	return &ports.ErrorResult{
		Error:     "Simulated 500 error",
		Code:      "HTTP_500",
		Timestamp: s.now().UTC(),
	}
}

// RateLimit always produces a 429-shaped payload.
func (s *SimulationService) RateLimit(ctx context.Context) *ports.RateLimitResult {
	return &ports.RateLimitResult{
		Error:      "Too many requests. Please try again later.",
		RetryAfter: rateLimitRetryAfter,
	}
}

func (s *SimulationService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *SimulationService) float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
