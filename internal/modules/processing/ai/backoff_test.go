package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelaySchedule(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{-1, 1 * time.Minute},
		{0, 1 * time.Minute},
		{1, 1 * time.Minute},
		{2, 5 * time.Minute},
		{3, 30 * time.Minute},
		{4, 2 * time.Hour},
		{5, 24 * time.Hour},
		{6, 24 * time.Hour},
		{100, 24 * time.Hour},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RetryDelay(tc.attempts), "attempts=%d", tc.attempts)
	}
}

func TestRetryDelayNeverDecreases(t *testing.T) {
	for attempts := 1; attempts < 10; attempts++ {
		assert.GreaterOrEqual(t, RetryDelay(attempts+1), RetryDelay(attempts))
	}
}

func TestCalculateNextRetryTime(t *testing.T) {
	before := time.Now()
	next := CalculateNextRetryTime(1)
	assert.True(t, next.After(before))
	assert.WithinDuration(t, before.Add(1*time.Minute), next, 5*time.Second)
}
