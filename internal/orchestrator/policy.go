// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package orchestrator

import "time"

// Quarantine window defaults. The network window scales with consecutive
// failures (doubling, capped at MaxWindow) to avoid hot-looping a flaky
// backend.
const (
	DefaultNetworkWindow         = 5 * time.Minute
	DefaultRateLimitWindow       = 2 * time.Minute
	DefaultInvalidResponseWindow = 1 * time.Minute
	DefaultMaxWindow             = 1 * time.Hour
)

// QuarantinePolicy computes how long a provider stays out of rotation
// after a failure, by failure kind.
type QuarantinePolicy struct {
	// NetworkWindow is the base window for Timeout and NetworkError
	// failures. It doubles with each consecutive failure, capped at
	// MaxWindow.
	NetworkWindow time.Duration

	// RateLimitWindow applies to RateLimited failures when the provider
	// did not declare a retry-after time.
	RateLimitWindow time.Duration

	// InvalidResponseWindow applies to malformed-output failures. Shorter
	// than the network window since these often self-resolve.
	InvalidResponseWindow time.Duration

	// MaxWindow caps the scaled network window.
	MaxWindow time.Duration
}

// DefaultQuarantinePolicy returns the documented default policy.
func DefaultQuarantinePolicy() QuarantinePolicy {
	return QuarantinePolicy{
		NetworkWindow:         DefaultNetworkWindow,
		RateLimitWindow:       DefaultRateLimitWindow,
		InvalidResponseWindow: DefaultInvalidResponseWindow,
		MaxWindow:             DefaultMaxWindow,
	}
}

// normalize fills zero fields with defaults.
func (p QuarantinePolicy) normalize() QuarantinePolicy {
	def := DefaultQuarantinePolicy()
	if p.NetworkWindow <= 0 {
		p.NetworkWindow = def.NetworkWindow
	}
	if p.RateLimitWindow <= 0 {
		p.RateLimitWindow = def.RateLimitWindow
	}
	if p.InvalidResponseWindow <= 0 {
		p.InvalidResponseWindow = def.InvalidResponseWindow
	}
	if p.MaxWindow <= 0 {
		p.MaxWindow = def.MaxWindow
	}
	return p
}

// Window returns the quarantine duration for a failure. consecutiveFailures
// is the counter value after the failure being penalized (>= 1). retryAfter
// is the provider-declared retry-after for rate limits, zero when absent.
//
// ok is false for AuthenticationError: the quarantine is indefinite and
// only a manual reactivation can lift it, since retrying a bad credential
// blindly cannot succeed.
func (p QuarantinePolicy) Window(kind FailureKind, consecutiveFailures int, retryAfter time.Duration) (d time.Duration, ok bool) {
	p = p.normalize()

	switch kind {
	case FailureAuthentication:
		return 0, false
	case FailureRateLimited:
		if retryAfter > 0 {
			return retryAfter, true
		}
		return p.RateLimitWindow, true
	case FailureInvalidResponse:
		return p.InvalidResponseWindow, true
	default: // Timeout, NetworkError, anything unclassified
		return scaleWindow(p.NetworkWindow, p.MaxWindow, consecutiveFailures), true
	}
}

// scaleWindow doubles base for each consecutive failure beyond the first,
// capped at max.
func scaleWindow(base, max time.Duration, consecutiveFailures int) time.Duration {
	if consecutiveFailures < 1 {
		consecutiveFailures = 1
	}

	d := base
	for i := 1; i < consecutiveFailures; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}
