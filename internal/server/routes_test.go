// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdesk-dev/draftdesk/internal/draft"
	"github.com/draftdesk-dev/draftdesk/internal/server"
	"github.com/draftdesk-dev/draftdesk/internal/wordpress"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
	"github.com/draftdesk-dev/draftdesk/pkg/health"
)

// Mock service implementations for testing.

type mockStatusService struct {
	snapshot        []health.ProviderStatus
	reactivateCalls int
}

func (m *mockStatusService) Snapshot() []health.ProviderStatus {
	return m.snapshot
}

func (m *mockStatusService) ReactivateAll() {
	m.reactivateCalls++
	for i := range m.snapshot {
		m.snapshot[i].Available = true
		m.snapshot[i].State = health.StateAvailable
		m.snapshot[i].QuarantinedUntil = nil
	}
}

type mockDraftService struct {
	draft *draft.Draft
	err   error
}

func (m *mockDraftService) Generate(_ context.Context, brief draft.Brief) (*draft.Draft, error) {
	if m.err != nil {
		return nil, m.err
	}
	d := *m.draft
	d.Title = brief.Topic
	return &d, nil
}

type mockPostService struct {
	posts []wordpress.Post
	err   error
}

func (m *mockPostService) ListPosts(_ context.Context, status string, perPage int) ([]wordpress.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.posts, nil
}

func defaultSnapshot() []health.ProviderStatus {
	until := time.Date(2026, 3, 10, 12, 5, 0, 0, time.UTC)
	return []health.ProviderStatus{
		{ID: "gemini", DisplayName: "Google Gemini", Priority: 1, Available: true, State: health.StateAvailable},
		{ID: "openai", DisplayName: "OpenAI GPT", Priority: 2, Available: false, State: health.StateQuarantined,
			QuarantinedUntil: &until, ConsecutiveFailures: 2, LastError: "timeout"},
	}
}

func newTestServer(t *testing.T, svc *server.Services) *server.Server {
	t.Helper()
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"})
	require.NoError(t, err)
	srv.RegisterServices(svc)
	return srv
}

func doRequest(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestRoutes_Health(t *testing.T) {
	srv := newTestServer(t, server.NewServicesForTest(&mockStatusService{}, &mockDraftService{}))

	w := doRequest(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestRoutes_Status(t *testing.T) {
	status := &mockStatusService{snapshot: defaultSnapshot()}
	srv := newTestServer(t, server.NewServicesForTest(status, &mockDraftService{}))

	w := doRequest(t, srv, http.MethodGet, "/api/v1/status", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status             string `json:"status"`
		ProvidersTotal     int    `json:"providers_total"`
		ProvidersAvailable int    `json:"providers_available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.ProvidersTotal)
	assert.Equal(t, 1, resp.ProvidersAvailable)
}

func TestRoutes_ListProviders(t *testing.T) {
	status := &mockStatusService{snapshot: defaultSnapshot()}
	srv := newTestServer(t, server.NewServicesForTest(status, &mockDraftService{}))

	w := doRequest(t, srv, http.MethodGet, "/api/v1/providers", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Providers []health.ProviderStatus `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Providers, 2)
	assert.Equal(t, "gemini", resp.Providers[0].ID)
	assert.Equal(t, health.StateQuarantined, resp.Providers[1].State)
	require.NotNil(t, resp.Providers[1].QuarantinedUntil)
}

func TestRoutes_ReactivateProviders(t *testing.T) {
	status := &mockStatusService{snapshot: defaultSnapshot()}
	srv := newTestServer(t, server.NewServicesForTest(status, &mockDraftService{}))

	w := doRequest(t, srv, http.MethodPost, "/api/v1/providers/reactivate", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, status.reactivateCalls)

	var resp struct {
		Status    string                  `json:"status"`
		Providers []health.ProviderStatus `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "reactivated", resp.Status)
	for _, p := range resp.Providers {
		assert.True(t, p.Available)
	}
}

func TestRoutes_CreateDraft(t *testing.T) {
	drafts := &mockDraftService{draft: &draft.Draft{
		ID:         "d-1",
		Body:       "<p>Body</p>",
		ProviderID: "gemini",
		Model:      "gemini-2.5-flash",
		CreatedAt:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}}
	srv := newTestServer(t, server.NewServicesForTest(&mockStatusService{}, drafts))

	w := doRequest(t, srv, http.MethodPost, "/api/v1/drafts", `{"topic": "home espresso"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp draft.Draft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "d-1", resp.ID)
	assert.Equal(t, "home espresso", resp.Title)
	assert.Equal(t, "gemini", resp.ProviderID)
}

func TestRoutes_CreateDraft_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", ddkerr.New(ddkerr.CodeDraftInputInvalid, "topic must not be empty"), http.StatusBadRequest},
		{"all providers unavailable", ddkerr.New(ddkerr.CodeOrchestratorAllUnavailable, "all providers unavailable"), http.StatusBadGateway},
		{"internal", ddkerr.New(ddkerr.CodeDraftGenerateFailure, "boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, server.NewServicesForTest(&mockStatusService{}, &mockDraftService{err: tt.err}))

			w := doRequest(t, srv, http.MethodPost, "/api/v1/drafts", `{"topic": "x"}`)
			assert.Equal(t, tt.wantStatus, w.Code, "body: %s", w.Body.String())
		})
	}
}

func TestRoutes_ListPosts(t *testing.T) {
	posts := &mockPostService{posts: []wordpress.Post{
		{ID: 1, Title: "First", Status: "draft"},
	}}
	srv := newTestServer(t, server.NewServicesForTest(&mockStatusService{}, &mockDraftService{}, posts))

	w := doRequest(t, srv, http.MethodGet, "/api/v1/posts?status=draft&per_page=5", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Posts []wordpress.Post `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "First", resp.Posts[0].Title)
}

func TestRoutes_ListPosts_NoSiteConfigured(t *testing.T) {
	srv := newTestServer(t, server.NewServicesForTest(&mockStatusService{}, &mockDraftService{}))

	w := doRequest(t, srv, http.MethodGet, "/api/v1/posts", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoutes_ListPosts_AuthFailure(t *testing.T) {
	posts := &mockPostService{err: ddkerr.New(ddkerr.CodeWordPressAuthUnauthorized, "bad app password")}
	srv := newTestServer(t, server.NewServicesForTest(&mockStatusService{}, &mockDraftService{}, posts))

	w := doRequest(t, srv, http.MethodGet, "/api/v1/posts", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewServices_Validation(t *testing.T) {
	_, err := server.NewServices(nil, &mockDraftService{})
	require.Error(t, err)
	assert.True(t, ddkerr.HasCode(err, ddkerr.CodeServerConfigInvalid))

	_, err = server.NewServices(&mockStatusService{}, nil)
	require.Error(t, err)

	svc, err := server.NewServices(&mockStatusService{}, &mockDraftService{})
	require.NoError(t, err)
	assert.Nil(t, svc.Posts())
}

func TestNew_RequiresListenAddr(t *testing.T) {
	_, err := server.New(server.Config{})
	require.Error(t, err)
	assert.True(t, ddkerr.HasCode(err, ddkerr.CodeServerConfigInvalid))
}
