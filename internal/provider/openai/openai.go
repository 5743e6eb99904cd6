// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package openai

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/draftdesk-dev/draftdesk/internal/orchestrator"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// DefaultModel is used when the payload does not name a model.
const DefaultModel = "gpt-4.1"

// DefaultDisplayName labels the provider in status output unless the
// config overrides it.
const DefaultDisplayName = "OpenAI GPT"

// Config holds OpenAI adapter configuration.
type Config struct {
	APIKey      string
	BaseURL     string // optional, useful for testing against a mock server
	Model       string // default model, DefaultModel when empty
	DisplayName string // status label, DefaultDisplayName when empty
}

// Adapter fulfills generation requests through the OpenAI Chat Completions API.
type Adapter struct {
	client openaisdk.Client
	config Config
}

// New creates an OpenAI adapter. Returns an error if the API key is missing.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, ddkerr.New(ddkerr.CodeConfigValidateInvalidValue,
			"openai: missing api_key in config", ddkerr.FieldProvider("openai"))
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
		client: openaisdk.NewClient(opts...),
		config: cfg,
	}, nil
}

func (a *Adapter) ID() string          { return "openai" }
func (a *Adapter) DisplayName() string { return a.config.DisplayName }

// Invoke sends one generation request. Failures come back as coded errors
// so the orchestrator can classify them without knowing SDK types.
func (a *Adapter) Invoke(ctx context.Context, payload orchestrator.Payload) (orchestrator.Output, error) {
	params := a.buildParams(payload)

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return orchestrator.Output{}, classifyError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return orchestrator.Output{}, ddkerr.New(ddkerr.CodeProviderResponseInvalid,
			"openai: response contained no choices", ddkerr.FieldProvider("openai"))
	}

	return orchestrator.Output{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}, nil
}

func (a *Adapter) buildParams(payload orchestrator.Payload) openaisdk.ChatCompletionNewParams {
	model := payload.Model
	if model == "" {
		model = a.config.Model
	}

	msgs := make([]openaisdk.ChatCompletionMessageParamUnion, 0, 2)
	if payload.System != "" {
		msgs = append(msgs, openaisdk.SystemMessage(payload.System))
	}
	msgs = append(msgs, openaisdk.UserMessage(payload.Prompt))

	params := openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: msgs,
	}
	if payload.MaxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(payload.MaxTokens))
	}
	if payload.Temperature > 0 {
		params.Temperature = openaisdk.Float(float64(payload.Temperature))
	}
	return params
}

// classifyError maps an SDK error to the orchestrator's failure taxonomy.
func classifyError(err error) error {
	var apiErr *openaisdk.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		return ddkerr.Wrapf(err, ddkerr.CodeProviderAuthInvalid,
			"openai: invalid API key (HTTP %d)", apiErr.StatusCode)
	case apiErr.StatusCode == http.StatusTooManyRequests:
		fields := []ddkerr.Attr{ddkerr.FieldProvider("openai")}
		if secs := retryAfterSeconds(apiErr.Response); secs > 0 {
			fields = append(fields, ddkerr.Field("retry_after_seconds", secs))
		}
		return ddkerr.Wrap(err, ddkerr.CodeProviderRateLimited,
			"openai: rate limited", fields...)
	case apiErr.StatusCode >= http.StatusInternalServerError:
		return ddkerr.Wrapf(err, ddkerr.CodeProviderNetworkFailure,
			"openai: upstream failure (HTTP %d)", apiErr.StatusCode)
	default:
		return ddkerr.Wrapf(err, ddkerr.CodeProviderUpstreamFailure,
			"openai: request rejected (HTTP %d)", apiErr.StatusCode)
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
