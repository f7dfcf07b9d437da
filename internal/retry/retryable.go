package retry

import (
	"context"
	"errors"
	"strings"
)

// IsRetryable checks if a connection error should trigger another attempt.
// It handles common patterns across brokers including:
// - Context cancellation (not retryable)
// - Authentication/authorization rejections (not retryable)
// - Protocol-level rejections (not retryable)
// - Network failures and transient broker states (retryable)
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Credential rejections - retrying cannot help
	authPatterns := []string{
		"noauth", "wrongpass", "bad user name or password",
		"not authorised", "not authorized", "authentication",
		"permission", "unauthorized",
	}
	for _, p := range authPatterns {
		if strings.Contains(errStr, p) {
			return false
		}
	}

	// Protocol rejections - the request itself is wrong
	invalidPatterns := []string{
		"identifier rejected", "unacceptable protocol version",
		"invalid", "malformed",
	}
	for _, p := range invalidPatterns {
		if strings.Contains(errStr, p) {
			return false
		}
	}

	// Retryable: network failures and transient broker states.
	// LOADING/TRYAGAIN/CLUSTERDOWN are Redis startup/failover replies.
	retryablePatterns := []string{
		"connection refused", "connection reset", "broken pipe",
		"i/o timeout", "timeout", "temporary", "eof",
		"no such host", "network is unreachable", "tls handshake",
		"loading", "tryagain", "clusterdown", "not connected",
		"server unavailable",
	}
	for _, p := range retryablePatterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}

	return false
}
