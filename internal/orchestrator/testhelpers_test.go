// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package orchestrator_test

import (
	"context"
	"sync"
	"time"

	"github.com/draftdesk-dev/draftdesk/internal/orchestrator"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// mockProvider is a reusable orchestrator.Provider for tests. invokeFunc
// controls the outcome; calls records every invocation.
type mockProvider struct {
	id         string
	name       string
	invokeFunc func(ctx context.Context, p orchestrator.Payload) (orchestrator.Output, error)

	mu    sync.Mutex
	calls int
}

func newMockProvider(id string) *mockProvider {
	return &mockProvider{
		id:   id,
		name: id,
		invokeFunc: func(_ context.Context, _ orchestrator.Payload) (orchestrator.Output, error) {
			return orchestrator.Output{Text: "draft from " + id}, nil
		},
	}
}

func (m *mockProvider) ID() string          { return m.id }
func (m *mockProvider) DisplayName() string { return m.name }

func (m *mockProvider) Invoke(ctx context.Context, p orchestrator.Payload) (orchestrator.Output, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.invokeFunc(ctx, p)
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// failWith makes the provider return the given error on every invocation.
func (m *mockProvider) failWith(err error) *mockProvider {
	m.invokeFunc = func(_ context.Context, _ orchestrator.Payload) (orchestrator.Output, error) {
		return orchestrator.Output{}, err
	}
	return m
}

// blockUntilCancelled makes the provider wait for context cancellation and
// return the context error, simulating a hung backend.
func (m *mockProvider) blockUntilCancelled() *mockProvider {
	m.invokeFunc = func(ctx context.Context, _ orchestrator.Payload) (orchestrator.Output, error) {
		<-ctx.Done()
		return orchestrator.Output{}, ctx.Err()
	}
	return m
}

func timeoutErr() error {
	return ddkerr.New(ddkerr.CodeProviderTimeout, "deadline exceeded")
}

func authErr() error {
	return ddkerr.New(ddkerr.CodeProviderAuthInvalid, "invalid api key")
}

func rateLimitErr(retryAfterSeconds int) error {
	return ddkerr.New(ddkerr.CodeProviderRateLimited, "quota exhausted",
		ddkerr.Field("retry_after_seconds", retryAfterSeconds))
}

// newRegistry builds a registry from providers registered with ascending
// priorities 1..n in argument order.
func newRegistry(providers ...*mockProvider) *orchestrator.Registry {
	reg := orchestrator.NewRegistry()
	for i, p := range providers {
		if err := reg.Register(p, i+1); err != nil {
			panic(err)
		}
	}
	return reg
}

// fixedClock is a mutable time source for tracker tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
