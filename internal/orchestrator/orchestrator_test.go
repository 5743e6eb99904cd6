// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/draftdesk-dev/draftdesk/internal/orchestrator"
	"github.com/draftdesk-dev/draftdesk/pkg/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestrator(providers ...*mockProvider) (*orchestrator.Orchestrator, *fixedClock) {
	o := orchestrator.New(newRegistry(providers...), orchestrator.Options{
		AttemptTimeout: 5 * time.Second,
	})
	clock := newFixedClock()
	o.Tracker().SetNowFunc(clock.Now)
	return o, clock
}

func TestOrchestrator_SnapshotOrderedByPriority(t *testing.T) {
	o, _ := newOrchestrator(newMockProvider("gemini"), newMockProvider("openai"), newMockProvider("anthropic"))

	snap := o.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "gemini", snap[0].ID)
	assert.Equal(t, 1, snap[0].Priority)
	assert.Equal(t, "openai", snap[1].ID)
	assert.Equal(t, 2, snap[1].Priority)
	assert.Equal(t, "anthropic", snap[2].ID)
	assert.Equal(t, 3, snap[2].Priority)

	for _, st := range snap {
		assert.True(t, st.Available)
		assert.Equal(t, health.StateAvailable, st.State)
	}
}

func TestOrchestrator_SnapshotReflectsQuarantine(t *testing.T) {
	o, clock := newOrchestrator(newMockProvider("gemini").failWith(timeoutErr()), newMockProvider("openai"))

	_, err := o.Dispatch(context.Background(), orchestrator.Request{})
	require.NoError(t, err)

	snap := o.Snapshot()
	require.Len(t, snap, 2)
	assert.False(t, snap[0].Available)
	assert.Equal(t, health.StateQuarantined, snap[0].State)
	assert.Equal(t, "gemini", snap[0].ID)
	assert.True(t, snap[1].Available)

	// Snapshot incurs the same lazy-expiry side effect as IsAvailable.
	clock.Advance(orchestrator.DefaultNetworkWindow)
	snap = o.Snapshot()
	assert.True(t, snap[0].Available)
	assert.Equal(t, health.StateAvailable, snap[0].State)
}

func TestOrchestrator_ReactivateAllPassthrough(t *testing.T) {
	o, _ := newOrchestrator(newMockProvider("gemini").failWith(authErr()), newMockProvider("openai"))

	_, err := o.Dispatch(context.Background(), orchestrator.Request{})
	require.NoError(t, err)
	assert.False(t, o.Snapshot()[0].Available)

	o.ReactivateAll()
	snap := o.Snapshot()
	assert.True(t, snap[0].Available, "reactivate-all must lift even indefinite quarantines")
	assert.Zero(t, snap[0].ConsecutiveFailures)
}

func TestOrchestrator_StartAndClose(t *testing.T) {
	o, _ := newOrchestrator(newMockProvider("gemini"))

	o.Start(context.Background())
	o.Start(context.Background()) // idempotent

	require.NoError(t, o.Close())
}

func TestOrchestrator_CloseWithoutStart(t *testing.T) {
	o, _ := newOrchestrator(newMockProvider("gemini"))
	require.NoError(t, o.Close())
}
