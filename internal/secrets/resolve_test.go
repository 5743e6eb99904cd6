// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package secrets_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdesk-dev/draftdesk/internal/secrets"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

func TestIsKeyringURI(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"valid URI", "keyring://draftdesk/anthropic-api-key", true},
		{"valid URI with dashes", "keyring://my-svc/my-key", true},
		{"env var reference", "${ANTHROPIC_API_KEY}", false},
		{"literal value", "sk-abc123", false},
		{"empty string", "", false},
		{"just scheme", "keyring://", true},
		{"other scheme", "vault://secret/key", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, secrets.IsKeyringURI(tt.value))
		})
	}
}

func TestParseKeyringURI(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		wantService string
		wantKey     string
		wantErr     bool
	}{
		{"valid", "keyring://draftdesk/api-key", "draftdesk", "api-key", false},
		{"dashes", "keyring://my-service/my-key-name", "my-service", "my-key-name", false},
		{"slashes in key", "keyring://draftdesk/path/to/key", "draftdesk", "path/to/key", false},
		{"not a keyring URI", "vault://secret/key", "", "", true},
		{"missing key", "keyring://draftdesk", "", "", true},
		{"missing service", "keyring:///api-key", "", "", true},
		{"empty key", "keyring://draftdesk/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, key, err := secrets.ParseKeyringURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ddkerr.HasCode(err, ddkerr.CodeSecretInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantService, service)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestResolveKeyringURI(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Store("resolve-test", "openai-api-key", "sk-resolved"))

	t.Run("resolves stored secret", func(t *testing.T) {
		val, err := secrets.ResolveKeyringURI(ks, "keyring://resolve-test/openai-api-key")
		require.NoError(t, err)
		assert.Equal(t, "sk-resolved", val)
	})

	t.Run("passes through literal values", func(t *testing.T) {
		val, err := secrets.ResolveKeyringURI(ks, "sk-literal")
		require.NoError(t, err)
		assert.Equal(t, "sk-literal", val)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := secrets.ResolveKeyringURI(ks, "keyring://resolve-test/absent")
		require.Error(t, err)
		assert.True(t, ddkerr.HasCode(err, ddkerr.CodeSecretResolveFailure))
	})
}

func TestResolveViperSecrets(t *testing.T) {
	ks := secrets.NewKeyringStore()
	require.NoError(t, ks.Store("viper-test", "anthropic-api-key", "sk-from-keyring"))

	v := viper.New()
	v.Set("providers.anthropic.api_key", "keyring://viper-test/anthropic-api-key")
	v.Set("providers.openai.api_key", "sk-literal")
	v.Set("providers.gemini.api_key", "keyring://viper-test/missing")

	secrets.ResolveViperSecrets(v, ks)

	assert.Equal(t, "sk-from-keyring", v.GetString("providers.anthropic.api_key"))
	assert.Equal(t, "sk-literal", v.GetString("providers.openai.api_key"))
	assert.Equal(t, "keyring://viper-test/missing", v.GetString("providers.gemini.api_key"),
		"unresolvable URIs stay in place")
}
