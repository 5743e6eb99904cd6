// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package orchestrator

import (
	"context"
	"time"
)

// Provider is an interchangeable AI backend capable of fulfilling a
// generation request. Adapters own their authentication and protocol
// details; the orchestrator only cares about success, failure class,
// and timing.
type Provider interface {
	ID() string
	DisplayName() string
	Invoke(ctx context.Context, payload Payload) (Output, error)
}

// Payload is the generation input passed through to a provider. The
// orchestrator treats it as opaque; adapters map it onto their SDK's
// request shape.
type Payload struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Output is the generation result produced by a provider.
type Output struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Request is one orchestration request.
type Request struct {
	// ID identifies the request in logs and diagnostics. Assigned
	// automatically when empty.
	ID string

	Payload Payload

	// ForceProviderID bypasses priority selection and attempts only the
	// named provider. A quarantined forced provider is still refused
	// unless AllowQuarantined is also set. Used for diagnostics.
	ForceProviderID string

	// AllowQuarantined skips quarantine filtering during selection.
	// Used for manual retry.
	AllowQuarantined bool
}

// Result is a successful orchestration outcome, tagged with the provider
// that produced it.
type Result struct {
	RequestID  string
	ProviderID string
	Latency    time.Duration
	Output     Output
}

// FailureKind classifies a single provider attempt failure. The kind
// drives the quarantine window applied to the provider.
type FailureKind string

const (
	FailureAuthentication  FailureKind = "authentication"
	FailureRateLimited     FailureKind = "rate_limited"
	FailureTimeout         FailureKind = "timeout"
	FailureNetwork         FailureKind = "network"
	FailureInvalidResponse FailureKind = "invalid_response"
)

// Attempt records one failed provider attempt within a dispatch, for
// diagnostics on the terminal error.
type Attempt struct {
	ProviderID string
	Kind       FailureKind
	Err        error
}
