// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncludesCodeAndFields(t *testing.T) {
	err := ddkerr.New(
		ddkerr.CodeOrchestratorNotFound,
		"provider not registered",
		ddkerr.FieldProvider("gemini"),
		ddkerr.Field("priority", 1),
	)

	require.Error(t, err)
	assert.Equal(t, ddkerr.CodeOrchestratorNotFound, ddkerr.CodeOf(err))
	assert.True(t, ddkerr.HasCode(err, ddkerr.CodeOrchestratorNotFound))

	fields := ddkerr.FieldsOf(err)
	assert.Equal(t, "gemini", fields["provider"])
	assert.Equal(t, 1, fields["priority"])
}

func TestErrorfFormatsMessage(t *testing.T) {
	err := ddkerr.Errorf(ddkerr.CodeProviderTimeout, "invoking %s: deadline after %ds", "openai", 30)
	require.Error(t, err)
	assert.Equal(t, ddkerr.CodeProviderTimeout, ddkerr.CodeOf(err))
	assert.Contains(t, err.Error(), "invoking openai: deadline after 30s")
}

func TestErrorfWrapsInnerError(t *testing.T) {
	inner := stderrors.New("connection reset")
	err := ddkerr.Errorf(ddkerr.CodeProviderNetworkFailure, "request failed: %w", inner)
	require.Error(t, err)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ddkerr.CodeProviderNetworkFailure, ddkerr.CodeOf(err))
}

func TestWrapPreservesWrappedErrorAndCode(t *testing.T) {
	root := stderrors.New("post missing")
	err := ddkerr.Wrap(
		root,
		ddkerr.CodeWordPressEntityNotFound,
		"fetching post",
		ddkerr.Field("post_id", 42),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, ddkerr.CodeWordPressEntityNotFound, ddkerr.CodeOf(err))
	assert.True(t, ddkerr.IsNotFound(err))
	assert.Equal(t, 42, ddkerr.FieldsOf(err)["post_id"])
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, ddkerr.Wrap(nil, ddkerr.CodeServerInternalFailure, "ignored"))
	assert.NoError(t, ddkerr.Wrapf(nil, ddkerr.CodeServerInternalFailure, "ignored %s", "arg"))
}

func TestWithAddsContextWithoutChangingCode(t *testing.T) {
	base := ddkerr.New(ddkerr.CodeProviderRateLimited, "quota exhausted")
	withCtx := ddkerr.With(base, ddkerr.FieldRequestID("req-9"))

	require.Error(t, withCtx)
	assert.Equal(t, ddkerr.CodeProviderRateLimited, ddkerr.CodeOf(withCtx))
	assert.Equal(t, "req-9", ddkerr.FieldsOf(withCtx)["request_id"])
}

func TestCodeOfNonOopsError(t *testing.T) {
	assert.Equal(t, ddkerr.Code(""), ddkerr.CodeOf(stderrors.New("plain")))
	assert.Equal(t, ddkerr.Code(""), ddkerr.CodeOf(nil))
}

func TestClassifierPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"rate limited", ddkerr.New(ddkerr.CodeProviderRateLimited, "429"), ddkerr.IsRateLimited},
		{"timeout", ddkerr.New(ddkerr.CodeProviderTimeout, "deadline"), ddkerr.IsTimeout},
		{"auth invalid", ddkerr.New(ddkerr.CodeProviderAuthInvalid, "bad key"), ddkerr.IsUnauthorized},
		{"all unavailable", ddkerr.New(ddkerr.CodeOrchestratorAllUnavailable, "exhausted"), ddkerr.IsAllUnavailable},
		{"upstream", ddkerr.New(ddkerr.CodeProviderUpstreamFailure, "502"), ddkerr.IsUpstreamFailure},
		{"invalid input", ddkerr.New(ddkerr.CodeDraftInputInvalid, "empty brief"), ddkerr.IsInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.pred(tt.err))
		})
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ddkerr.New(ddkerr.CodeServerEntityNotFound, "x"), http.StatusNotFound},
		{"invalid input", ddkerr.New(ddkerr.CodeServerRequestInvalid, "x"), http.StatusBadRequest},
		{"auth", ddkerr.New(ddkerr.CodeProviderAuthInvalid, "x"), http.StatusUnauthorized},
		{"rate limited", ddkerr.New(ddkerr.CodeProviderRateLimited, "x"), http.StatusTooManyRequests},
		{"timeout", ddkerr.New(ddkerr.CodeProviderTimeout, "x"), http.StatusGatewayTimeout},
		{"all unavailable", ddkerr.New(ddkerr.CodeOrchestratorAllUnavailable, "x"), http.StatusBadGateway},
		{"fallback", stderrors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ddkerr.HTTPStatus(tt.err))
		})
	}
}

func TestJoinCombinesErrors(t *testing.T) {
	a := stderrors.New("first")
	b := stderrors.New("second")
	err := ddkerr.Join(a, b)

	require.Error(t, err)
	assert.ErrorIs(t, err, a)
	assert.ErrorIs(t, err, b)
	assert.Equal(t, ddkerr.CodeServerInternalFailure, ddkerr.CodeOf(err))
}
