package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	require.True(t, rl.IsAllowed(1))
	require.True(t, rl.IsAllowed(1))
	require.False(t, rl.IsAllowed(1))
	require.True(t, rl.IsAllowed(2))

	now = now.Add(61 * time.Second)
	require.True(t, rl.IsAllowed(1))
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	require.True(t, rl.IsAllowed(1))
	require.False(t, rl.IsAllowed(1))

	rl.Forget(1)
	require.True(t, rl.IsAllowed(1))
}
