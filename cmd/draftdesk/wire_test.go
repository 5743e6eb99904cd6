// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdesk-dev/draftdesk/internal/config"
)

func testGatewayConfig() *config.Config {
	return &config.Config{
		Networking: config.NetworkingConfig{
			Listen: "127.0.0.1:0",
		},
		Providers: map[string]config.ProviderConfig{
			"anthropic": {APIKey: "test-key-anthropic", Priority: 1},
			"openai":    {APIKey: "test-key-openai", Priority: 2},
			"gemini":    {APIKey: "test-key-gemini", Priority: 3},
		},
		Orchestrator: config.OrchestratorConfig{
			AttemptTimeout:       time.Minute,
			ReactivationInterval: time.Minute,
			Quarantine: config.QuarantineConfig{
				NetworkWindow:         5 * time.Minute,
				RateLimitWindow:       2 * time.Minute,
				InvalidResponseWindow: time.Minute,
				MaxWindow:             time.Hour,
			},
		},
	}
}

func TestWireGateway(t *testing.T) {
	gw, err := WireGateway(testGatewayConfig())
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	assert.NotNil(t, gw.Server)
	assert.NotNil(t, gw.Orchestrator)
	assert.NotNil(t, gw.Drafts)
	assert.Nil(t, gw.WordPress, "wordpress client should be nil when no site is configured")
}

func TestWireGateway_ProviderRegistration(t *testing.T) {
	gw, err := WireGateway(testGatewayConfig())
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	snapshot := gw.Orchestrator.Snapshot()
	require.Len(t, snapshot, 3)
	// Snapshot is ordered by priority.
	assert.Equal(t, "anthropic", snapshot[0].ID)
	assert.Equal(t, "openai", snapshot[1].ID)
	assert.Equal(t, "gemini", snapshot[2].ID)
	for _, p := range snapshot {
		assert.True(t, p.Available)
	}
}

func TestWireGateway_DisplayNameFromConfig(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.Providers["anthropic"] = config.ProviderConfig{
		APIKey:      "test-key-anthropic",
		Priority:    1,
		DisplayName: "Claude (EU)",
	}

	gw, err := WireGateway(cfg)
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	snapshot := gw.Orchestrator.Snapshot()
	require.NotEmpty(t, snapshot)
	assert.Equal(t, "Claude (EU)", snapshot[0].DisplayName)
	// Unset display names keep the adapter defaults.
	assert.Equal(t, "OpenAI GPT", snapshot[1].DisplayName)
}

func TestWireGateway_DisabledProviderSkipped(t *testing.T) {
	disabled := false
	cfg := testGatewayConfig()
	cfg.Providers["openai"] = config.ProviderConfig{
		APIKey:   "test-key-openai",
		Priority: 2,
		Enabled:  &disabled,
	}

	gw, err := WireGateway(cfg)
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	snapshot := gw.Orchestrator.Snapshot()
	require.Len(t, snapshot, 2)
	for _, p := range snapshot {
		assert.NotEqual(t, "openai", p.ID)
	}
}

func TestWireGateway_NoProvidersEnabled(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.Providers = nil

	_, err := WireGateway(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no providers enabled")
}

func TestWireGateway_UnknownProvider(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.Providers["mistral"] = config.ProviderConfig{APIKey: "k", Priority: 4}

	_, err := WireGateway(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mistral")
}

func TestWireGateway_StatusEndpoint(t *testing.T) {
	gw, err := WireGateway(testGatewayConfig())
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	gw.Server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"providers_total":3`)
	assert.Contains(t, w.Body.String(), `"providers_available":3`)
}

func TestWireGateway_PostsEndpointWithoutWordPress(t *testing.T) {
	gw, err := WireGateway(testGatewayConfig())
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	w := httptest.NewRecorder()
	gw.Server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGateway_GracefulShutdown(t *testing.T) {
	gw, err := WireGateway(testGatewayConfig())
	require.NoError(t, err)
	defer func() { _ = gw.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// Start and let the context expire — should shut down cleanly.
	err = gw.Start(ctx)
	assert.NoError(t, err)
}
