// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package main

import (
	"context"
	"log/slog"
	"sort"

	"github.com/draftdesk-dev/draftdesk/internal/config"
	"github.com/draftdesk-dev/draftdesk/internal/draft"
	"github.com/draftdesk-dev/draftdesk/internal/orchestrator"
	anthropicprov "github.com/draftdesk-dev/draftdesk/internal/provider/anthropic"
	geminiprov "github.com/draftdesk-dev/draftdesk/internal/provider/gemini"
	openaiprov "github.com/draftdesk-dev/draftdesk/internal/provider/openai"
	"github.com/draftdesk-dev/draftdesk/internal/server"
	"github.com/draftdesk-dev/draftdesk/internal/wordpress"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// Gateway holds all wired subsystems and manages their lifecycle.
type Gateway struct {
	Server       *server.Server
	Orchestrator *orchestrator.Orchestrator
	Drafts       *draft.Service
	WordPress    *wordpress.Client // nil when no site is configured
}

// WireGateway creates all subsystems and wires them together.
func WireGateway(cfg *config.Config) (*Gateway, error) {
	// 1. Provider registry, populated in priority order.
	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	// 2. Orchestrator with quarantine policy from config.
	orch := orchestrator.New(registry, orchestrator.Options{
		AttemptTimeout:       cfg.Orchestrator.AttemptTimeout,
		ReactivationInterval: cfg.Orchestrator.ReactivationInterval,
		Policy: orchestrator.QuarantinePolicy{
			NetworkWindow:         cfg.Orchestrator.Quarantine.NetworkWindow,
			RateLimitWindow:       cfg.Orchestrator.Quarantine.RateLimitWindow,
			InvalidResponseWindow: cfg.Orchestrator.Quarantine.InvalidResponseWindow,
			MaxWindow:             cfg.Orchestrator.Quarantine.MaxWindow,
		},
	})

	// 3. Optional WordPress client.
	var wp *wordpress.Client
	if cfg.WordPressConfigured() {
		wp, err = wordpress.New(wordpress.Config{
			BaseURL:     cfg.WordPress.BaseURL,
			Username:    cfg.WordPress.Username,
			AppPassword: cfg.WordPress.AppPassword,
			PostType:    cfg.WordPress.PostType,
		})
		if err != nil {
			return nil, ddkerr.Wrap(err, ddkerr.CodeCLISetupFailure, "creating wordpress client")
		}
	}

	// 4. Draft service. An untyped nil keeps the publisher check meaningful.
	var publisher draft.Publisher
	if wp != nil {
		publisher = wp
	}
	drafts := draft.NewService(orch, publisher)

	// 5. HTTP server with route services.
	srv, err := server.New(server.Config{ListenAddr: cfg.Networking.Listen})
	if err != nil {
		return nil, ddkerr.Wrap(err, ddkerr.CodeCLISetupFailure, "creating server")
	}

	var posts []server.PostService
	if wp != nil {
		posts = append(posts, wp)
	}
	services, err := server.NewServices(orch, drafts, posts...)
	if err != nil {
		return nil, ddkerr.Wrap(err, ddkerr.CodeCLISetupFailure, "wiring services")
	}
	srv.RegisterServices(services)

	return &Gateway{
		Server:       srv,
		Orchestrator: orch,
		Drafts:       drafts,
		WordPress:    wp,
	}, nil
}

// Start launches the reactivation scheduler and runs the HTTP server until
// ctx is cancelled.
func (gw *Gateway) Start(ctx context.Context) error {
	gw.Orchestrator.Start(ctx)
	return gw.Server.Start(ctx)
}

// Close stops background work.
func (gw *Gateway) Close() error {
	return gw.Orchestrator.Close()
}

// buildRegistry constructs adapters for every enabled configured provider
// and registers them under their configured priorities.
func buildRegistry(cfg *config.Config) (*orchestrator.Registry, error) {
	type entry struct {
		name     string
		provider config.ProviderConfig
	}

	entries := make([]entry, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if !pc.IsEnabled() {
			slog.Debug("provider disabled in config", "provider", name)
			continue
		}
		entries = append(entries, entry{name: name, provider: pc})
	}
	if len(entries) == 0 {
		return nil, ddkerr.New(ddkerr.CodeCLISetupFailure,
			"no providers enabled: configure at least one under providers in draftdesk.yaml")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].provider.Priority < entries[j].provider.Priority })

	registry := orchestrator.NewRegistry()
	for _, e := range entries {
		p, err := buildProvider(e.name, e.provider)
		if err != nil {
			return nil, ddkerr.Wrapf(err, ddkerr.CodeCLISetupFailure, "configuring provider %s", e.name)
		}
		if err := registry.Register(p, e.provider.Priority); err != nil {
			return nil, err
		}
		slog.Info("provider registered", "provider", e.name, "priority", e.provider.Priority)
	}
	return registry, nil
}

func buildProvider(name string, pc config.ProviderConfig) (orchestrator.Provider, error) {
	switch name {
	case "anthropic":
		return anthropicprov.New(anthropicprov.Config{
			APIKey:      pc.APIKey,
			BaseURL:     pc.Endpoint,
			Model:       pc.Model,
			DisplayName: pc.DisplayName,
		})
	case "openai":
		return openaiprov.New(openaiprov.Config{
			APIKey:      pc.APIKey,
			BaseURL:     pc.Endpoint,
			Model:       pc.Model,
			DisplayName: pc.DisplayName,
		})
	case "gemini":
		return geminiprov.New(geminiprov.Config{
			APIKey:      pc.APIKey,
			BaseURL:     pc.Endpoint,
			Model:       pc.Model,
			DisplayName: pc.DisplayName,
		})
	default:
		return nil, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue, "unknown provider %q", name)
	}
}
