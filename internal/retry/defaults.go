package retry

import "time"

// Default retry and timeout constants shared across transports.
const (
	// MaxAttempts is the default number of connection attempts.
	MaxAttempts = 3

	// DialTimeout is the default per-attempt connection timeout.
	DialTimeout = 10 * time.Second

	// BackoffBase is the base duration for exponential backoff.
	BackoffBase = 250 * time.Millisecond
)
