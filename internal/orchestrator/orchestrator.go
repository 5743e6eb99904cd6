// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

// Package orchestrator routes AI generation requests across multiple
// interchangeable backend providers, quarantines providers that fail, and
// restores them automatically or on manual request.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/draftdesk-dev/draftdesk/pkg/health"
)

// Options configures an Orchestrator. Zero values fall back to documented
// defaults.
type Options struct {
	// AttemptTimeout bounds each provider invocation.
	AttemptTimeout time.Duration

	// Policy maps failure kinds to quarantine windows.
	Policy QuarantinePolicy

	// ReactivationInterval is the background scheduler tick.
	ReactivationInterval time.Duration
}

// Orchestrator is the explicitly constructed provider-fleet manager. Its
// lifecycle is tied to application startup and shutdown; there is no
// module-level singleton.
type Orchestrator struct {
	registry   *Registry
	tracker    *HealthTracker
	dispatcher *Dispatcher
	scheduler  *Scheduler

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// New wires an Orchestrator around a populated registry. The registry must
// not be mutated after this call.
func New(registry *Registry, opts Options) *Orchestrator {
	tracker := NewHealthTracker(registry.IDs(), opts.Policy)
	return &Orchestrator{
		registry:   registry,
		tracker:    tracker,
		dispatcher: NewDispatcher(registry, tracker, opts.AttemptTimeout),
		scheduler:  NewScheduler(tracker, opts.ReactivationInterval),
		done:       make(chan struct{}),
	}
}

// Dispatch fulfills one generation request. See Dispatcher.Dispatch.
func (o *Orchestrator) Dispatch(ctx context.Context, req Request) (*Result, error) {
	return o.dispatcher.Dispatch(ctx, req)
}

// Snapshot returns the status of every registered provider in priority
// order, reflecting the health tracker at call time. Intended for periodic
// UI polling and on-demand refresh.
func (o *Orchestrator) Snapshot() []health.ProviderStatus {
	providers := o.registry.List()
	out := make([]health.ProviderStatus, 0, len(providers))
	for _, p := range providers {
		st, ok := o.tracker.StatusOf(p.ID())
		if !ok {
			continue
		}
		st.DisplayName = p.DisplayName()
		if prio, ok := o.registry.Priority(p.ID()); ok {
			st.Priority = prio
		}
		out = append(out, st)
	}
	return out
}

// ReactivateAll immediately restores every provider, including
// indefinitely quarantined ones. Wired to the user-facing "reactivate all
// providers" control.
func (o *Orchestrator) ReactivateAll() {
	o.tracker.ReactivateAll()
}

// Tracker exposes the health tracker for collaborators that only need
// availability reads.
func (o *Orchestrator) Tracker() *HealthTracker {
	return o.tracker
}

// Start launches the reactivation scheduler. Subsequent calls are no-ops.
func (o *Orchestrator) Start(ctx context.Context) {
	o.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		o.cancel = cancel
		go func() {
			defer close(o.done)
			o.scheduler.Run(runCtx)
		}()
	})
}

// Close stops the scheduler and waits for it to exit. Safe to call without
// a prior Start.
func (o *Orchestrator) Close() error {
	if o.cancel == nil {
		return nil
	}
	o.cancel()
	<-o.done
	return nil
}
