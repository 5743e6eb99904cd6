// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package orchestrator

import (
	"context"
	"log/slog"
	"time"
)

// DefaultReactivationInterval is how often the scheduler scans for
// elapsed quarantines.
const DefaultReactivationInterval = 60 * time.Second

// Scheduler proactively restores providers whose timed quarantine has
// elapsed, independently of request traffic. It competes with dispatches
// for the same per-provider critical sections but holds each only briefly.
type Scheduler struct {
	tracker  *HealthTracker
	interval time.Duration
}

// NewScheduler creates a Scheduler. A non-positive interval falls back to
// DefaultReactivationInterval.
func NewScheduler(tracker *HealthTracker, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultReactivationInterval
	}
	return &Scheduler{
		tracker:  tracker,
		interval: interval,
	}
}

// Run ticks until the context is cancelled. Indefinite quarantines are
// never resolved here; only ReactivateAll lifts those.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if restored := s.tracker.ReactivateExpired(); restored > 0 {
				slog.Info("reactivated providers after quarantine expiry", "count", restored)
			}
		}
	}
}
