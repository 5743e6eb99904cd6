// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package orchestrator

import (
	"sort"
	"sync"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// registration pairs a provider with its priority and registration order.
type registration struct {
	provider Provider
	priority int
	order    int
}

// Registry holds the static set of provider adapters with their priority
// ranking. Providers are registered once at startup; List is safe for
// concurrent use afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries []registration
	byID    map[string]int // id → index into entries
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]int),
	}
}

// Register adds a provider with the given priority. Lower priority values
// are tried first. A duplicate provider id or a duplicate priority is a
// configuration error.
func (r *Registry) Register(p Provider, priority int) error {
	if p == nil || p.ID() == "" {
		return ddkerr.New(ddkerr.CodeOrchestratorRequestInvalid, "register: provider must have a non-empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID()]; exists {
		return ddkerr.New(
			ddkerr.CodeOrchestratorPriorityConflict,
			"provider already registered: "+p.ID(),
			ddkerr.FieldProvider(p.ID()),
		)
	}
	for _, e := range r.entries {
		if e.priority == priority {
			return ddkerr.Errorf(
				ddkerr.CodeOrchestratorPriorityConflict,
				"priority %d already assigned to provider %s", priority, e.provider.ID(),
			)
		}
	}

	r.entries = append(r.entries, registration{
		provider: p,
		priority: priority,
		order:    len(r.entries),
	})
	r.byID[p.ID()] = len(r.entries) - 1
	return nil
}

// List returns providers sorted ascending by priority, stable on
// registration order.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := append([]registration(nil), r.entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].priority != sorted[j].priority {
			return sorted[i].priority < sorted[j].priority
		}
		return sorted[i].order < sorted[j].order
	})

	out := make([]Provider, len(sorted))
	for i, e := range sorted {
		out[i] = e.provider
	}
	return out
}

// Get retrieves a provider and its priority by id.
func (r *Registry) Get(id string) (Provider, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, 0, ddkerr.New(
			ddkerr.CodeOrchestratorNotFound,
			"provider not found: "+id,
			ddkerr.FieldProvider(id),
		)
	}
	e := r.entries[idx]
	return e.provider, e.priority, nil
}

// Priority returns the priority assigned to the given provider id.
func (r *Registry) Priority(id string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return 0, false
	}
	return r.entries[idx].priority, true
}

// IDs returns the registered provider ids in priority order.
func (r *Registry) IDs() []string {
	providers := r.List()
	out := make([]string, len(providers))
	for i, p := range providers {
		out[i] = p.ID()
	}
	return out
}

// Len reports the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
