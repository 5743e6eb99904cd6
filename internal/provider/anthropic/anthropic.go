// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/draftdesk-dev/draftdesk/internal/orchestrator"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// DefaultModel is used when the payload does not name a model.
const DefaultModel = "claude-sonnet-4-5"

// DefaultDisplayName labels the provider in status output unless the
// config overrides it.
const DefaultDisplayName = "Anthropic Claude"

// Config holds Anthropic adapter configuration.
type Config struct {
	APIKey      string
	BaseURL     string // optional, useful for testing against a mock server
	Model       string // default model, DefaultModel when empty
	DisplayName string // status label, DefaultDisplayName when empty
}

// Adapter fulfills generation requests through the Anthropic Messages API.
type Adapter struct {
	client anthropicsdk.Client
	config Config
}

// New creates an Anthropic adapter. Returns an error if the API key is missing.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, ddkerr.New(ddkerr.CodeConfigValidateInvalidValue,
			"anthropic: missing api_key in config", ddkerr.FieldProvider("anthropic"))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = DefaultDisplayName
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Adapter{
		client: anthropicsdk.NewClient(opts...),
		config: cfg,
	}, nil
}

func (a *Adapter) ID() string          { return "anthropic" }
func (a *Adapter) DisplayName() string { return a.config.DisplayName }

// Invoke sends one generation request. Failures come back as coded errors
// so the orchestrator can classify them without knowing SDK types.
func (a *Adapter) Invoke(ctx context.Context, payload orchestrator.Payload) (orchestrator.Output, error) {
	params := a.buildParams(payload)

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return orchestrator.Output{}, classifyError(err)
	}

	text := collectText(msg)
	if text == "" {
		return orchestrator.Output{}, ddkerr.New(ddkerr.CodeProviderResponseInvalid,
			"anthropic: response contained no text content", ddkerr.FieldProvider("anthropic"))
	}

	return orchestrator.Output{
		Text:         text,
		Model:        string(msg.Model),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

func (a *Adapter) buildParams(payload orchestrator.Payload) anthropicsdk.MessageNewParams {
	model := payload.Model
	if model == "" {
		model = a.config.Model
	}
	maxTokens := int64(payload.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(payload.Prompt)),
		},
	}
	if payload.System != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: payload.System}}
	}
	if payload.Temperature > 0 {
		params.Temperature = anthropicsdk.Float(float64(payload.Temperature))
	}
	return params
}

func collectText(msg *anthropicsdk.Message) string {
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}

// classifyError maps an SDK error to the orchestrator's failure taxonomy.
func classifyError(err error) error {
	var apiErr *anthropicsdk.Error
	if !errors.As(err, &apiErr) {
		// Transport-level failures (timeouts, connection resets) are left
		// for the orchestrator's standard-library classification.
		return err
	}

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return ddkerr.Wrapf(err, ddkerr.CodeProviderAuthInvalid,
			"anthropic: invalid API key (HTTP %d)", apiErr.StatusCode)
	case apiErr.StatusCode == http.StatusTooManyRequests:
		fields := []ddkerr.Attr{ddkerr.FieldProvider("anthropic")}
		if secs := retryAfterSeconds(apiErr.Response); secs > 0 {
			fields = append(fields, ddkerr.Field("retry_after_seconds", secs))
		}
		return ddkerr.Wrap(err, ddkerr.CodeProviderRateLimited,
			"anthropic: rate limited", fields...)
	case apiErr.StatusCode >= http.StatusInternalServerError:
		return ddkerr.Wrapf(err, ddkerr.CodeProviderNetworkFailure,
			"anthropic: upstream failure (HTTP %d)", apiErr.StatusCode)
	default:
		return ddkerr.Wrapf(err, ddkerr.CodeProviderUpstreamFailure,
			"anthropic: request rejected (HTTP %d)", apiErr.StatusCode)
	}
}

// retryAfterSeconds parses the Retry-After response header, 0 when absent.
func retryAfterSeconds(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}
