// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package orchestrator

import (
	"sync"
	"time"

	"github.com/draftdesk-dev/draftdesk/pkg/health"
)

// healthRecord is the mutable availability state of one provider. Each
// record carries its own lock so unrelated providers never contend.
type healthRecord struct {
	mu sync.Mutex

	state healthState
	// quarantinedUntil is meaningful only while quarantined. nil means
	// the quarantine is indefinite and only ReactivateAll lifts it.
	quarantinedUntil    *time.Time
	consecutiveFailures int
	lastKind            FailureKind
	lastError           string
}

type healthState int

const (
	stateAvailable healthState = iota
	stateQuarantined
)

// HealthTracker owns one healthRecord per registered provider. Records are
// created at construction and live for the process lifetime; quarantine
// state is deliberately not persisted so a fresh process starts optimistic.
type HealthTracker struct {
	records map[string]*healthRecord
	policy  QuarantinePolicy
	nowFunc func() time.Time
}

// NewHealthTracker creates a tracker with one record per provider id,
// all starting Available.
func NewHealthTracker(ids []string, policy QuarantinePolicy) *HealthTracker {
	records := make(map[string]*healthRecord, len(ids))
	for _, id := range ids {
		records[id] = &healthRecord{state: stateAvailable}
	}
	return &HealthTracker{
		records: records,
		policy:  policy.normalize(),
		nowFunc: time.Now,
	}
}

// SetNowFunc overrides the time source (for testing). Must be called
// before the tracker is shared across goroutines.
func (t *HealthTracker) SetNowFunc(fn func() time.Time) {
	t.nowFunc = fn
}

// IsAvailable reports whether the provider may be selected. Reading
// availability passively resolves an expired quarantine to Available as a
// side effect, so a read and a scheduler tick can never disagree once the
// clock has passed the deadline.
func (t *HealthTracker) IsAvailable(id string) bool {
	rec, ok := t.records[id]
	if !ok {
		return false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return t.availableLocked(rec)
}

// availableLocked resolves lazy expiry. Caller must hold rec.mu.
func (t *HealthTracker) availableLocked(rec *healthRecord) bool {
	if rec.state == stateAvailable {
		return true
	}
	if rec.quarantinedUntil == nil {
		// Indefinite quarantine never lazily expires.
		return false
	}
	if t.nowFunc().Before(*rec.quarantinedUntil) {
		return false
	}
	rec.state = stateAvailable
	rec.quarantinedUntil = nil
	return true
}

// RecordSuccess marks the provider Available and resets its failure count.
func (t *HealthTracker) RecordSuccess(id string) {
	rec, ok := t.records[id]
	if !ok {
		return
	}

	rec.mu.Lock()
	rec.state = stateAvailable
	rec.quarantinedUntil = nil
	rec.consecutiveFailures = 0
	rec.lastError = ""
	rec.lastKind = ""
	rec.mu.Unlock()
}

// RecordFailure increments the provider's failure count and quarantines it
// for a window derived from the failure kind. retryAfter is the
// provider-declared retry-after for rate limits, zero when absent.
func (t *HealthTracker) RecordFailure(id string, kind FailureKind, errMsg string, retryAfter time.Duration) {
	rec, ok := t.records[id]
	if !ok {
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.consecutiveFailures++
	rec.lastKind = kind
	rec.lastError = errMsg
	rec.state = stateQuarantined

	window, timed := t.policy.Window(kind, rec.consecutiveFailures, retryAfter)
	if !timed {
		rec.quarantinedUntil = nil
		return
	}
	until := t.nowFunc().Add(window)
	rec.quarantinedUntil = &until
}

// ReactivateAll unconditionally restores every provider to Available and
// resets failure counts. This is the only operation triggered by explicit
// user action rather than request outcome or timer, and the only way to
// lift an indefinite quarantine.
func (t *HealthTracker) ReactivateAll() {
	for _, rec := range t.records {
		rec.mu.Lock()
		rec.state = stateAvailable
		rec.quarantinedUntil = nil
		rec.consecutiveFailures = 0
		rec.lastError = ""
		rec.lastKind = ""
		rec.mu.Unlock()
	}
}

// ReactivateExpired proactively restores providers whose timed quarantine
// has elapsed and returns how many were restored. Indefinite quarantines
// are never touched. Equivalent to what lazy IsAvailable does, but driven
// by the reactivation scheduler so status snapshots reflect freshness
// without requiring a read to trigger it.
func (t *HealthTracker) ReactivateExpired() int {
	now := t.nowFunc()
	restored := 0
	for _, rec := range t.records {
		rec.mu.Lock()
		if rec.state == stateQuarantined && rec.quarantinedUntil != nil && !now.Before(*rec.quarantinedUntil) {
			rec.state = stateAvailable
			rec.quarantinedUntil = nil
			restored++
		}
		rec.mu.Unlock()
	}
	return restored
}

// StatusOf returns a point-in-time health snapshot for the provider,
// incurring the same lazy-expiry side effect as IsAvailable. Identity
// fields (display name, priority) are filled in by the caller.
func (t *HealthTracker) StatusOf(id string) (health.ProviderStatus, bool) {
	rec, ok := t.records[id]
	if !ok {
		return health.ProviderStatus{}, false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	st := health.ProviderStatus{
		ID:                  id,
		Available:           t.availableLocked(rec),
		ConsecutiveFailures: rec.consecutiveFailures,
		LastError:           rec.lastError,
	}
	if rec.state == stateQuarantined {
		st.State = health.StateQuarantined
		if rec.quarantinedUntil != nil {
			u := *rec.quarantinedUntil
			st.QuarantinedUntil = &u
		}
	} else {
		st.State = health.StateAvailable
	}
	return st, true
}
