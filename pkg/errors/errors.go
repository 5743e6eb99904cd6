// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigParseInvalidFormat   Code = "config.parse.invalid_format"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"

	// Provider attempt failures. These are absorbed into quarantine
	// decisions by the orchestrator and only reach callers as diagnostic
	// context on a terminal dispatch error.
	CodeProviderAuthInvalid     Code = "provider.auth.invalid"
	CodeProviderRateLimited     Code = "provider.request.rate_limited"
	CodeProviderTimeout         Code = "provider.request.timeout"
	CodeProviderNetworkFailure  Code = "provider.network.failure"
	CodeProviderResponseInvalid Code = "provider.response.invalid"
	CodeProviderRequestInvalid  Code = "provider.request.invalid"
	CodeProviderUpstreamFailure Code = "provider.upstream.failure"

	CodeOrchestratorNotFound         Code = "orchestrator.registry.not_found"
	CodeOrchestratorPriorityConflict Code = "orchestrator.registry.priority_conflict"
	CodeOrchestratorAllUnavailable   Code = "orchestrator.dispatch.all_unavailable"
	CodeOrchestratorRequestInvalid   Code = "orchestrator.dispatch.invalid_input"

	CodeDraftGenerateFailure Code = "draft.generate.failure"
	CodeDraftInputInvalid    Code = "draft.generate.invalid_input"
	CodeDraftPublishFailure  Code = "draft.publish.failure"

	CodeWordPressRequestFailure   Code = "wordpress.request.failure"
	CodeWordPressAuthUnauthorized Code = "wordpress.auth.unauthorized"
	CodeWordPressEntityNotFound   Code = "wordpress.entity.not_found"
	CodeWordPressResponseInvalid  Code = "wordpress.response.invalid"

	CodeSecretInvalidInput   Code = "secret.invalid_input"
	CodeSecretNotFound       Code = "secret.not_found"
	CodeSecretStoreFailure   Code = "secret.store.failure"
	CodeSecretDeleteFailure  Code = "secret.delete.failure"
	CodeSecretResolveFailure Code = "secret.resolve.failure"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerEntityNotFound  Code = "server.entity.not_found"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerConfigInvalid   Code = "server.config.invalid"
	CodeServerStartFailure    Code = "server.start.failure"

	CodeCLIGatewayNotRunning Code = "cli.gateway.not_running"
	CodeCLIRequestFailure    Code = "cli.request.failure"
	CodeCLIInputInvalid      Code = "cli.input.invalid"
	CodeCLISetupFailure      Code = "cli.setup.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldProvider(value string) Attr {
	return Field("provider", value)
}

func FieldRequestID(value string) Attr {
	return Field("request_id", value)
}

func FieldDraftID(value string) Attr {
	return Field("draft_id", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeServerInternalFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}

	if code, ok := oopsErr.Code().(Code); ok {
		return code
	}

	if code, ok := oopsErr.Code().(string); ok {
		return Code(code)
	}

	return Code(fmt.Sprintf("%v", oopsErr.Code()))
}

func FieldsOf(err error) map[string]any {
	if err == nil {
		return nil
	}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}

	return oopsErr.Context()
}

func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

func IsNotFound(err error) bool {
	return reason(CodeOf(err)) == "not_found"
}

func IsInvalidInput(err error) bool {
	r := reason(CodeOf(err))
	return r == "invalid" || r == "invalid_input" || r == "invalid_value" || r == "invalid_format"
}

func IsRateLimited(err error) bool {
	return reason(CodeOf(err)) == "rate_limited"
}

func IsTimeout(err error) bool {
	return reason(CodeOf(err)) == "timeout"
}

func IsUnauthorized(err error) bool {
	code := CodeOf(err)
	if reason(code) == "unauthorized" {
		return true
	}
	return strings.Contains(string(code), ".auth.") && reason(code) == "invalid"
}

func IsUpstreamFailure(err error) bool {
	code := CodeOf(err)
	return strings.Contains(string(code), "upstream") && reason(code) == "failure"
}

func IsAllUnavailable(err error) bool {
	return HasCode(err, CodeOrchestratorAllUnavailable)
}

func HTTPStatus(err error) int {
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsUnauthorized(err):
		return http.StatusUnauthorized
	case IsInvalidInput(err):
		return http.StatusBadRequest
	case IsRateLimited(err):
		return http.StatusTooManyRequests
	case IsTimeout(err):
		return http.StatusGatewayTimeout
	case IsAllUnavailable(err), IsUpstreamFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}

func reason(code Code) string {
	if code == "" {
		return ""
	}

	raw := string(code)
	idx := strings.LastIndex(raw, ".")
	if idx == -1 || idx == len(raw)-1 {
		return raw
	}
	return raw[idx+1:]
}
