// Package netsim injects artificial latency and failures in front of real
// network calls. Once a mode is enabled, every call through the client feels
// it; the injected errors are indistinguishable from genuine transport
// failures downstream, which is the point.
package netsim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Mode selects the active simulation behavior. Exactly one mode is active
// at a time.
type Mode string

const (
	ModeNone       Mode = "none"
	ModeUnreliable Mode = "unreliable"
	ModeSlow       Mode = "slow"
	ModeError      Mode = "error"
	ModeCustom     Mode = "custom"
)

const (
	maxCustomDelayMs = 30000
	errorModeDelayMs = 200

	slowMinDelayMs = 2000
	slowSpanMs     = 3000

	unreliableMinDelayMs = 100
	unreliableSpanMs     = 500
	unreliableFailRate   = 0.5
)

// Settings is the process-wide simulation configuration. CustomDelayMs and
// ErrorRate only apply when Mode is ModeCustom.
type Settings struct {
	Mode          Mode
	CustomDelayMs int
	ErrorRate     int // 0-100
}

// DefaultSettings mirrors the panel's initial state.
func DefaultSettings() Settings {
	return Settings{Mode: ModeNone, CustomDelayMs: 2000, ErrorRate: 50}
}

// ParseMode converts a mode name from flags or configuration, rejecting
// anything that is not a known mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeNone, ModeUnreliable, ModeSlow, ModeError, ModeCustom:
		return m, nil
	}
	return "", fmt.Errorf("unknown simulation mode %q (want none|unreliable|slow|error|custom)", s)
}

// Sleeper abstracts the delay so tests can skip real waiting.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
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
}

// Injector applies the configured simulation before a request is dispatched.
// Safe for concurrent use.
type Injector struct {
	mu       sync.Mutex
	settings Settings
	rng      *rand.Rand
	sleeper  Sleeper
}

// NewInjector builds an Injector seeded from seed. Pass a fixed seed for
// deterministic failure sequences in tests.
func NewInjector(seed int64) *Injector {
	return &Injector{
		settings: DefaultSettings(),
		rng:      rand.New(rand.NewSource(seed)),
		sleeper:  timerSleeper{},
	}
}

// WithSleeper replaces the wait implementation. Intended for tests.
func (in *Injector) WithSleeper(s Sleeper) *Injector {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.sleeper = s
	return in
}

// SetMode switches the active simulation mode.
func (in *Injector) SetMode(mode Mode) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.settings.Mode = mode
}

// SetCustomDelay sets the custom-mode delay, clamped to [0, 30000] ms.
func (in *Injector) SetCustomDelay(ms int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.settings.CustomDelayMs = clamp(ms, 0, maxCustomDelayMs)
}

// SetErrorRate sets the custom-mode failure rate, clamped to [0, 100].
func (in *Injector) SetErrorRate(rate int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.settings.ErrorRate = clamp(rate, 0, 100)
}

// Settings returns the current configuration.
func (in *Injector) Settings() Settings {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.settings
}

// Enabled reports whether any simulation is active.
func (in *Injector) Enabled() bool {
	return in.Settings().Mode != ModeNone
}

// Apply runs the configured simulation: it either returns nil (possibly
// after a delay) or an error describing the simulated failure. It must be
// called before the real network call is attempted.
func (in *Injector) Apply(ctx context.Context) error {
	in.mu.Lock()
	settings := in.settings
	sleeper := in.sleeper
	var delay time.Duration
	var fail bool
	var failMsg string

	switch settings.Mode {
	case ModeSlow:
		delay = time.Duration(slowMinDelayMs+in.rng.Intn(slowSpanMs)) * time.Millisecond

	case ModeUnreliable:
		delay = time.Duration(unreliableMinDelayMs+in.rng.Intn(unreliableSpanMs)) * time.Millisecond
		fail = in.rng.Float64() < unreliableFailRate
		failMsg = "Simulated network error (50% failure rate)"

	case ModeError:
		delay = errorModeDelayMs * time.Millisecond
		fail = true
		failMsg = "Simulated network error (always fails)"

	case ModeCustom:
		delay = time.Duration(settings.CustomDelayMs) * time.Millisecond
		fail = in.rng.Float64()*100 < float64(settings.ErrorRate)
		failMsg = fmt.Sprintf("Simulated network error (%d%% failure rate)", settings.ErrorRate)

	default: // ModeNone
		in.mu.Unlock()
		return nil
	}
	in.mu.Unlock()

	if err := sleeper.Sleep(ctx, delay); err != nil {
		return err
	}
	if fail {
		return errors.New(failMsg)
	}
	return nil
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
