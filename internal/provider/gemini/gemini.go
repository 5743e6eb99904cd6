// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package gemini

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"

	"github.com/draftdesk-dev/draftdesk/internal/orchestrator"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// DefaultModel is used when the payload does not name a model.
const DefaultModel = "gemini-2.5-flash"

// DefaultDisplayName labels the provider in status output unless the
// config overrides it.
const DefaultDisplayName = "Google Gemini"

// Config holds Gemini adapter configuration.
type Config struct {
	APIKey      string
	BaseURL     string // optional, useful for testing against a mock server
	Model       string // default model, DefaultModel when empty
	DisplayName string // status label, DefaultDisplayName when empty
}

// Adapter fulfills generation requests through the Google Gemini API.
type Adapter struct {
	client *genai.Client
	config Config
}

// New creates a Gemini adapter. Returns an error if the API key is missing
// or the SDK client cannot be constructed.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, ddkerr.New(ddkerr.CodeConfigValidateInvalidValue,
			"gemini: missing api_key in config", ddkerr.FieldProvider("gemini"))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = DefaultDisplayName
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, ddkerr.Wrapf(err, ddkerr.CodeProviderUpstreamFailure, "gemini: creating client")
	}

	return &Adapter{
		client: client,
		config: cfg,
	}, nil
}

func (a *Adapter) ID() string          { return "gemini" }
func (a *Adapter) DisplayName() string { return a.config.DisplayName }

// Invoke sends one generation request. Failures come back as coded errors
// so the orchestrator can classify them without knowing SDK types.
func (a *Adapter) Invoke(ctx context.Context, payload orchestrator.Payload) (orchestrator.Output, error) {
	model := payload.Model
	if model == "" {
		model = a.config.Model
	}

	cfg := &genai.GenerateContentConfig{}
	if payload.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(payload.System, genai.RoleUser)
	}
	if payload.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(payload.MaxTokens)
	}
	if payload.Temperature > 0 {
		cfg.Temperature = genai.Ptr(payload.Temperature)
	}

	resp, err := a.client.Models.GenerateContent(ctx, model, genai.Text(payload.Prompt), cfg)
	if err != nil {
		return orchestrator.Output{}, classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return orchestrator.Output{}, ddkerr.New(ddkerr.CodeProviderResponseInvalid,
			"gemini: response contained no text", ddkerr.FieldProvider("gemini"))
	}

	out := orchestrator.Output{
		Text:  text,
		Model: model,
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// classifyError maps an SDK error to the orchestrator's failure taxonomy.
func classifyError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return ddkerr.Wrapf(err, ddkerr.CodeProviderAuthInvalid,
			"gemini: invalid API key (HTTP %d)", apiErr.Code)
	case apiErr.Code == http.StatusTooManyRequests:
		return ddkerr.Wrap(err, ddkerr.CodeProviderRateLimited,
			"gemini: rate limited", ddkerr.FieldProvider("gemini"))
	case apiErr.Code >= http.StatusInternalServerError:
		return ddkerr.Wrapf(err, ddkerr.CodeProviderNetworkFailure,
			"gemini: upstream failure (HTTP %d)", apiErr.Code)
	default:
		return ddkerr.Wrapf(err, ddkerr.CodeProviderUpstreamFailure,
			"gemini: request rejected (HTTP %d)", apiErr.Code)
	}
}
