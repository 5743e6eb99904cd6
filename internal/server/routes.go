// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/draftdesk-dev/draftdesk/internal/draft"
	"github.com/draftdesk-dev/draftdesk/internal/wordpress"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
	"github.com/draftdesk-dev/draftdesk/pkg/health"
)

// RegisterServices sets the service dependencies and registers REST routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "gateway-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Gateway status",
		Tags:        []string{"system"},
	}, s.handleStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-providers",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers",
		Summary:     "Provider health snapshot",
		Tags:        []string{"providers"},
	}, s.handleListProviders)

	huma.Register(s.api, huma.Operation{
		OperationID: "reactivate-providers",
		Method:      http.MethodPost,
		Path:        "/api/v1/providers/reactivate",
		Summary:     "Reactivate all quarantined providers",
		Tags:        []string{"providers"},
	}, s.handleReactivateProviders)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-draft",
		Method:      http.MethodPost,
		Path:        "/api/v1/drafts",
		Summary:     "Generate a post draft",
		Tags:        []string{"drafts"},
	}, s.handleCreateDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-posts",
		Method:      http.MethodGet,
		Path:        "/api/v1/posts",
		Summary:     "List WordPress posts",
		Tags:        []string{"posts"},
	}, s.handleListPosts)
}

// --- Request/Response types for huma ---

type statusOutput struct {
	Body struct {
		Status             string `json:"status" example:"ok" doc:"Gateway status"`
		ProvidersTotal     int    `json:"providers_total" doc:"Number of registered providers"`
		ProvidersAvailable int    `json:"providers_available" doc:"Providers currently accepting traffic"`
	}
}

type listProvidersOutput struct {
	Body struct {
		Providers []health.ProviderStatus `json:"providers"`
	}
}

type reactivateProvidersOutput struct {
	Body struct {
		Status    string                  `json:"status" doc:"Always \"reactivated\""`
		Providers []health.ProviderStatus `json:"providers" doc:"Snapshot after reactivation"`
	}
}

type createDraftInput struct {
	Body draft.Brief
}

type createDraftOutput struct {
	Body draft.Draft
}

type listPostsInput struct {
	Status  string `query:"status" enum:"draft,publish,any" default:"draft" doc:"Post status filter"`
	PerPage int    `query:"per_page" minimum:"1" maximum:"100" default:"10" doc:"Maximum posts to return"`
}

type listPostsOutput struct {
	Body struct {
		Posts []wordpress.Post `json:"posts"`
	}
}

// --- Handlers ---

func (s *Server) handleStatus(_ context.Context, _ *struct{}) (*statusOutput, error) {
	snap := s.services.Status().Snapshot()

	available := 0
	for _, st := range snap {
		if st.Available {
			available++
		}
	}

	out := &statusOutput{}
	out.Body.Status = "ok"
	out.Body.ProvidersTotal = len(snap)
	out.Body.ProvidersAvailable = available
	return out, nil
}

func (s *Server) handleListProviders(_ context.Context, _ *struct{}) (*listProvidersOutput, error) {
	out := &listProvidersOutput{}
	out.Body.Providers = s.services.Status().Snapshot()
	return out, nil
}

func (s *Server) handleReactivateProviders(_ context.Context, _ *struct{}) (*reactivateProvidersOutput, error) {
	s.services.Status().ReactivateAll()

	out := &reactivateProvidersOutput{}
	out.Body.Status = "reactivated"
	out.Body.Providers = s.services.Status().Snapshot()
	return out, nil
}

func (s *Server) handleCreateDraft(ctx context.Context, input *createDraftInput) (*createDraftOutput, error) {
	d, err := s.services.Drafts().Generate(ctx, input.Body)
	if err != nil {
		return nil, humaError(err, "generating draft")
	}
	return &createDraftOutput{Body: *d}, nil
}

func (s *Server) handleListPosts(ctx context.Context, input *listPostsInput) (*listPostsOutput, error) {
	if s.services.Posts() == nil {
		return nil, huma.Error503ServiceUnavailable("no wordpress site configured")
	}

	posts, err := s.services.Posts().ListPosts(ctx, input.Status, input.PerPage)
	if err != nil {
		return nil, humaError(err, "listing posts")
	}

	out := &listPostsOutput{}
	out.Body.Posts = posts
	return out, nil
}

// humaError maps a coded error to the matching huma status error.
func humaError(err error, msg string) error {
	switch ddkerr.HTTPStatus(err) {
	case http.StatusBadRequest:
		return huma.Error400BadRequest(msg, err)
	case http.StatusUnauthorized:
		return huma.Error401Unauthorized(msg, err)
	case http.StatusNotFound:
		return huma.Error404NotFound(msg, err)
	case http.StatusTooManyRequests:
		return huma.Error429TooManyRequests(msg, err)
	case http.StatusBadGateway:
		return huma.Error502BadGateway(msg, err)
	case http.StatusGatewayTimeout:
		return huma.Error504GatewayTimeout(msg, err)
	default:
		return huma.Error500InternalServerError(msg, err)
	}
}
