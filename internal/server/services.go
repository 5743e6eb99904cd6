// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package server

import (
	"context"

	"github.com/draftdesk-dev/draftdesk/internal/draft"
	"github.com/draftdesk-dev/draftdesk/internal/wordpress"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
	"github.com/draftdesk-dev/draftdesk/pkg/health"
)

// Services holds dependencies injected into route handlers. Each field is
// an interface so subsystems can be mocked in tests. Use NewServices to
// ensure all required services are provided.
type Services struct {
	status ProviderStatusService
	drafts DraftService
	posts  PostService // optional; nil = no WordPress site configured
}

// NewServices creates a Services instance with validation. The optional
// posts variadic parameter sets the WordPress post service.
func NewServices(status ProviderStatusService, drafts DraftService, posts ...PostService) (*Services, error) {
	if status == nil {
		return nil, ddkerr.New(ddkerr.CodeServerConfigInvalid, "provider status service is required")
	}
	if drafts == nil {
		return nil, ddkerr.New(ddkerr.CodeServerConfigInvalid, "draft service is required")
	}
	if len(posts) > 1 {
		return nil, ddkerr.New(ddkerr.CodeServerConfigInvalid, "at most one post service may be supplied")
	}

	s := &Services{
		status: status,
		drafts: drafts,
	}
	if len(posts) > 0 && posts[0] != nil {
		s.posts = posts[0]
	}
	return s, nil
}

// Status returns the provider status service.
func (s *Services) Status() ProviderStatusService {
	return s.status
}

// Drafts returns the draft service.
func (s *Services) Drafts() DraftService {
	return s.drafts
}

// Posts returns the optional WordPress post service.
// Returns nil when no site is configured.
func (s *Services) Posts() PostService {
	return s.posts
}

// ProviderStatusService exposes orchestrator health to REST handlers.
type ProviderStatusService interface {
	Snapshot() []health.ProviderStatus
	ReactivateAll()
}

// DraftService generates drafts for REST handlers.
type DraftService interface {
	Generate(ctx context.Context, brief draft.Brief) (*draft.Draft, error)
}

// PostService lists WordPress posts for REST handlers. Optional — when
// nil, post endpoints return 503.
type PostService interface {
	ListPosts(ctx context.Context, status string, perPage int) ([]wordpress.Post, error)
}

// NewServicesForTest creates a Services instance for testing. It delegates
// to NewServices to enforce the same validation invariants as production
// code. Panics if a required service is nil.
func NewServicesForTest(status ProviderStatusService, drafts DraftService, posts ...PostService) *Services {
	svc, err := NewServices(status, drafts, posts...)
	if err != nil {
		panic(err)
	}
	return svc
}
