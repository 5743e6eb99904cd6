// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// DefaultAttemptTimeout bounds a single provider invocation. A provider
// that has not answered within this window is treated as a Timeout
// failure, never as "still pending".
const DefaultAttemptTimeout = 60 * time.Second

// Dispatcher selects providers for requests, invokes them, and feeds
// outcomes back into the health tracker. Multiple dispatches may run
// concurrently; the tracker is the only shared mutable state.
type Dispatcher struct {
	registry       *Registry
	tracker        *HealthTracker
	attemptTimeout time.Duration
}

// NewDispatcher creates a Dispatcher. A non-positive attemptTimeout falls
// back to DefaultAttemptTimeout.
func NewDispatcher(registry *Registry, tracker *HealthTracker, attemptTimeout time.Duration) *Dispatcher {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &Dispatcher{
		registry:       registry,
		tracker:        tracker,
		attemptTimeout: attemptTimeout,
	}
}

// Dispatch tries candidate providers in ascending priority order until one
// succeeds. Each failed attempt quarantines its provider according to the
// failure kind. When every candidate has failed — or none was available to
// begin with — the terminal error carries code
// orchestrator.dispatch.all_unavailable naming each attempted provider and
// why it failed. Quarantined providers are never silently retried;
// exhaustion is reported so total unavailability surfaces as an incident.
//
// Caller cancellation aborts the in-flight attempt without recording a
// provider failure: the provider's true outcome is unknown.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	candidates, err := d.selectCandidates(req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ddkerr.New(
			ddkerr.CodeOrchestratorAllUnavailable,
			"no candidate providers: all quarantined",
			ddkerr.FieldRequestID(req.ID),
		)
	}

	attempts := make([]Attempt, 0, len(candidates))
	for _, p := range candidates {
		result, attemptErr := d.attempt(ctx, p, req)
		if attemptErr == nil {
			return result, nil
		}

		// Caller-initiated cancellation is not a provider failure.
		if ctx.Err() != nil {
			return nil, ddkerr.Wrap(ctx.Err(), ddkerr.CodeOrchestratorRequestInvalid,
				"dispatch cancelled by caller",
				ddkerr.FieldRequestID(req.ID),
				ddkerr.FieldProvider(p.ID()),
			)
		}

		kind := Classify(attemptErr)
		d.tracker.RecordFailure(p.ID(), kind, attemptErr.Error(), RetryAfter(attemptErr))
		attempts = append(attempts, Attempt{ProviderID: p.ID(), Kind: kind, Err: attemptErr})

		slog.Warn("provider attempt failed",
			"request_id", req.ID,
			"provider", p.ID(),
			"kind", string(kind),
			"error", attemptErr,
		)
	}

	return nil, exhaustedError(req.ID, attempts)
}

// selectCandidates resolves the ordered provider list for a request.
func (d *Dispatcher) selectCandidates(req Request) ([]Provider, error) {
	if req.ForceProviderID != "" {
		// Forced attempts bypass priority ordering but still honor
		// quarantine: probing a quarantined provider additionally requires
		// AllowQuarantined.
		p, _, err := d.registry.Get(req.ForceProviderID)
		if err != nil {
			return nil, ddkerr.With(err, ddkerr.FieldRequestID(req.ID))
		}
		if !req.AllowQuarantined && !d.tracker.IsAvailable(p.ID()) {
			return nil, ddkerr.New(
				ddkerr.CodeOrchestratorAllUnavailable,
				"forced provider "+p.ID()+" is quarantined",
				ddkerr.FieldRequestID(req.ID),
				ddkerr.FieldProvider(p.ID()),
				ddkerr.Field("attempted", []string{p.ID()}),
			)
		}
		return []Provider{p}, nil
	}

	ordered := d.registry.List()
	if req.AllowQuarantined {
		return ordered, nil
	}

	available := make([]Provider, 0, len(ordered))
	for _, p := range ordered {
		if d.tracker.IsAvailable(p.ID()) {
			available = append(available, p)
		}
	}
	return available, nil
}

// attempt invokes one provider under the bounded attempt timeout and
// records success with the tracker.
func (d *Dispatcher) attempt(ctx context.Context, p Provider, req Request) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
	defer cancel()

	start := time.Now()
	out, err := p.Invoke(attemptCtx, req.Payload)
	latency := time.Since(start)
	if err != nil {
		return nil, err
	}

	d.tracker.RecordSuccess(p.ID())
	slog.Debug("provider attempt succeeded",
		"request_id", req.ID,
		"provider", p.ID(),
		"latency", latency,
	)
	return &Result{
		RequestID:  req.ID,
		ProviderID: p.ID(),
		Latency:    latency,
		Output:     out,
	}, nil
}

// exhaustedError builds the terminal all-unavailable error, naming every
// attempted provider and its failure kind.
func exhaustedError(requestID string, attempts []Attempt) error {
	var sb strings.Builder
	sb.WriteString("all providers unavailable: ")

	attempted := make([]string, len(attempts))
	kinds := make(map[string]string, len(attempts))
	for i, a := range attempts {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(a.ProviderID)
		sb.WriteString(": ")
		sb.WriteString(string(a.Kind))
		attempted[i] = a.ProviderID
		kinds[a.ProviderID] = string(a.Kind)
	}

	return ddkerr.New(
		ddkerr.CodeOrchestratorAllUnavailable,
		sb.String(),
		ddkerr.FieldRequestID(requestID),
		ddkerr.Field("attempted", attempted),
		ddkerr.Field("failure_kinds", kinds),
	)
}
