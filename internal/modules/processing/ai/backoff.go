package ai

import "time"

// retrySchedule maps attempt count to the delay before the next retry.
// Fixed table rather than unbounded exponential growth; attempts past the
// table get the largest tabulated value.
var retrySchedule = []time.Duration{
	1 * time.Minute,
	5 * time.Minute,
	30 * time.Minute,
	2 * time.Hour,
	24 * time.Hour,
}

// CalculateNextRetryTime returns when a generation that has failed the given
// number of times should next be retried. attempts is 1-based.
func CalculateNextRetryTime(attempts int) time.Time {
	return time.Now().Add(RetryDelay(attempts))
}

// RetryDelay exposes the tabulated backoff delay for an attempt count.
func RetryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	idx := attempts - 1
	if idx >= len(retrySchedule) {
		idx = len(retrySchedule) - 1
	}
	return retrySchedule[idx]
}
