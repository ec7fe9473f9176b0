package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntervalDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"1m":  time.Minute,
		"15m": 15 * time.Minute,
		"1h":  time.Hour,
		"4H":  4 * time.Hour,
		"1d":  24 * time.Hour,
		"1w":  7 * 24 * time.Hour,
		"1M":  30 * 24 * time.Hour,
	}
	for in, want := range cases {
		got, ok := ParseIntervalDuration(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "h", "0h", "-1h", "1x", "abc"} {
		_, ok := ParseIntervalDuration(bad)
		assert.False(t, ok, bad)
	}
}

func TestNextRun(t *testing.T) {
	s := NewAlignedScheduler("test", time.Hour, 10*time.Second)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, base.Add(10*time.Second), s.NextRun(base.Add(5*time.Second)))
	assert.Equal(t, base.Add(time.Hour+10*time.Second), s.NextRun(base.Add(10*time.Second)))
	assert.Equal(t, base.Add(time.Hour+10*time.Second), s.NextRun(base.Add(30*time.Minute)))
}

func TestRun_ImmediateThenStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewAlignedScheduler("test", time.Hour, 0)
	s.RunImmediately = true

	calls := 0
	err := s.Run(ctx, func(context.Context) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRun_RejectsInvalidInterval(t *testing.T) {
	s := NewAlignedScheduler("test", 0, 0)
	assert.Error(t, s.Run(context.Background(), func(context.Context) error { return nil }))
	assert.Error(t, NewAlignedScheduler("test", time.Hour, 0).Run(context.Background(), nil))
}
