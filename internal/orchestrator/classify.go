// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package orchestrator

import (
	"context"
	"errors"
	"net"
	"time"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// Classify maps a provider attempt error to a FailureKind. Adapters are
// expected to return coded errors; raw SDK/transport errors fall back on
// standard-library inspection. Anything unrecognized is treated as a
// network-class failure and gets the default quarantine window.
func Classify(err error) FailureKind {
	switch ddkerr.CodeOf(err) {
	case ddkerr.CodeProviderAuthInvalid:
		return FailureAuthentication
	case ddkerr.CodeProviderRateLimited:
		return FailureRateLimited
	case ddkerr.CodeProviderTimeout:
		return FailureTimeout
	case ddkerr.CodeProviderResponseInvalid:
		return FailureInvalidResponse
	case ddkerr.CodeProviderNetworkFailure:
		return FailureNetwork
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureNetwork
	}

	return FailureNetwork
}

// RetryAfter extracts a provider-declared retry-after duration from a
// rate-limit error's structured fields. Returns zero when absent.
func RetryAfter(err error) time.Duration {
	fields := ddkerr.FieldsOf(err)
	if fields == nil {
		return 0
	}

	switch v := fields["retry_after_seconds"].(type) {
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case time.Duration:
		return v
	}
	return 0
}
