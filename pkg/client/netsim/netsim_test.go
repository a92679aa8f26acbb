package netsim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func TestInjector_NoneIsNoOp(t *testing.T) {
	sleeper := &recordingSleeper{}
	in := NewInjector(1).WithSleeper(sleeper)

	require.NoError(t, in.Apply(context.Background()))
	assert.Empty(t, sleeper.delays, "none mode must not sleep")
	assert.False(t, in.Enabled())
}

func TestInjector_SlowDelayWindow(t *testing.T) {
	sleeper := &recordingSleeper{}
	in := NewInjector(1).WithSleeper(sleeper)
	in.SetMode(ModeSlow)

	for i := 0; i < 50; i++ {
		require.NoError(t, in.Apply(context.Background()))
	}

	require.Len(t, sleeper.delays, 50)
	for _, d := range sleeper.delays {
		assert.GreaterOrEqual(t, d, 2000*time.Millisecond)
		assert.Less(t, d, 5000*time.Millisecond)
	}
}

func TestInjector_UnreliableBothOutcomes(t *testing.T) {
	sleeper := &recordingSleeper{}
	in := NewInjector(7).WithSleeper(sleeper)
	in.SetMode(ModeUnreliable)

	var failures, successes int
	for i := 0; i < 200; i++ {
		err := in.Apply(context.Background())
		if err != nil {
			failures++
			assert.EqualError(t, err, "Simulated network error (50% failure rate)")
		} else {
			successes++
		}
	}

	assert.NotZero(t, failures, "expected some failures over 200 calls")
	assert.NotZero(t, successes, "expected some successes over 200 calls")
	for _, d := range sleeper.delays {
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.Less(t, d, 600*time.Millisecond)
	}
}

func TestInjector_ErrorAlwaysFails(t *testing.T) {
	sleeper := &recordingSleeper{}
	in := NewInjector(1).WithSleeper(sleeper)
	in.SetMode(ModeError)

	for i := 0; i < 10; i++ {
		err := in.Apply(context.Background())
		require.EqualError(t, err, "Simulated network error (always fails)")
	}
	for _, d := range sleeper.delays {
		assert.Equal(t, 200*time.Millisecond, d)
	}
}

func TestInjector_CustomModeUsesConfiguredSettings(t *testing.T) {
	sleeper := &recordingSleeper{}
	in := NewInjector(1).WithSleeper(sleeper)
	in.SetMode(ModeCustom)
	in.SetCustomDelay(750)

	in.SetErrorRate(0)
	require.NoError(t, in.Apply(context.Background()))
	assert.Equal(t, 750*time.Millisecond, sleeper.delays[0])

	in.SetErrorRate(100)
	err := in.Apply(context.Background())
	require.EqualError(t, err, "Simulated network error (100% failure rate)")
}

func TestInjector_ClampsCustomSettings(t *testing.T) {
	in := NewInjector(1)

	in.SetCustomDelay(99999)
	assert.Equal(t, 30000, in.Settings().CustomDelayMs)

	in.SetCustomDelay(-1)
	assert.Equal(t, 0, in.Settings().CustomDelayMs)

	in.SetErrorRate(250)
	assert.Equal(t, 100, in.Settings().ErrorRate)

	in.SetErrorRate(-10)
	assert.Equal(t, 0, in.Settings().ErrorRate)
}

func TestInjector_DeterministicWithFixedSeed(t *testing.T) {
	run := func() []bool {
		in := NewInjector(99).WithSleeper(&recordingSleeper{})
		in.SetMode(ModeUnreliable)
		outcomes := make([]bool, 0, 20)
		for i := 0; i < 20; i++ {
			outcomes = append(outcomes, in.Apply(context.Background()) != nil)
		}
		return outcomes
	}

	assert.Equal(t, run(), run(), "same seed must produce the same failure sequence")
}

func TestInjector_DefaultSettings(t *testing.T) {
	in := NewInjector(1)

	s := in.Settings()
	assert.Equal(t, ModeNone, s.Mode)
	assert.Equal(t, 2000, s.CustomDelayMs)
	assert.Equal(t, 50, s.ErrorRate)
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"none", "unreliable", "slow", "error", "custom"} {
		mode, err := ParseMode(name)
		require.NoError(t, err, name)
		assert.Equal(t, Mode(name), mode)
	}

	for _, name := range []string{"", "bogus", "NONE", "Slow"} {
		_, err := ParseMode(name)
		assert.Error(t, err, "input %q must be rejected", name)
	}
}

func TestTimerSleeper_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := timerSleeper{}.Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
