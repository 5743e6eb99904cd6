// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package config

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// knownProviders lists the provider adapters Draftdesk ships with.
var knownProviders = map[string]bool{
	"anthropic": true,
	"openai":    true,
	"gemini":    true,
}

// Config is the top-level Draftdesk configuration.
type Config struct {
	Networking   NetworkingConfig          `mapstructure:"networking"`
	Providers    map[string]ProviderConfig `mapstructure:"providers"`
	Orchestrator OrchestratorConfig        `mapstructure:"orchestrator"`
	WordPress    WordPressConfig           `mapstructure:"wordpress"`
}

// NetworkingConfig controls how the Draftdesk gateway listens for connections.
type NetworkingConfig struct {
	Listen string `mapstructure:"listen"`
}

// ProviderConfig holds credentials, endpoint, and failover rank for one
// AI provider. Priority 1 is tried first; every enabled provider needs a
// distinct priority.
type ProviderConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Endpoint    string `mapstructure:"endpoint"`
	Model       string `mapstructure:"model"`
	Priority    int    `mapstructure:"priority"`
	DisplayName string `mapstructure:"display_name"`
	Enabled     *bool  `mapstructure:"enabled"`
}

// IsEnabled reports whether the provider participates in dispatch.
// Providers are enabled unless explicitly switched off.
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// OrchestratorConfig tunes dispatch and quarantine behavior.
type OrchestratorConfig struct {
	AttemptTimeout       time.Duration    `mapstructure:"attempt_timeout"`
	ReactivationInterval time.Duration    `mapstructure:"reactivation_interval"`
	Quarantine           QuarantineConfig `mapstructure:"quarantine"`
}

// QuarantineConfig sets the base quarantine windows per failure class.
type QuarantineConfig struct {
	NetworkWindow         time.Duration `mapstructure:"network_window"`
	RateLimitWindow       time.Duration `mapstructure:"rate_limit_window"`
	InvalidResponseWindow time.Duration `mapstructure:"invalid_response_window"`
	MaxWindow             time.Duration `mapstructure:"max_window"`
}

// WordPressConfig points Draftdesk at the WordPress site drafts are
// published to. AppPassword is a WordPress application password, not the
// account login password.
type WordPressConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Username    string `mapstructure:"username"`
	AppPassword string `mapstructure:"app_password"`
	PostType    string `mapstructure:"post_type"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix DRAFTDESK_).
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, ddkerr.Errorf(ddkerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates a populated Viper instance. Split out
// from Load so the CLI can run secret resolution between reading and
// unmarshalling.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ddkerr.Errorf(ddkerr.CodeConfigParseInvalidFormat, "unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// SetDefaults registers the built-in defaults on a Viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("networking.listen", "127.0.0.1:8390")
	v.SetDefault("orchestrator.attempt_timeout", "60s")
	v.SetDefault("orchestrator.reactivation_interval", "60s")
	v.SetDefault("orchestrator.quarantine.network_window", "5m")
	v.SetDefault("orchestrator.quarantine.rate_limit_window", "2m")
	v.SetDefault("orchestrator.quarantine.invalid_response_window", "1m")
	v.SetDefault("orchestrator.quarantine.max_window", "1h")
	v.SetDefault("wordpress.post_type", "posts")
}

// SetupEnv wires DRAFTDESK_-prefixed environment overrides.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("DRAFTDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate checks the configuration for logical errors. It returns all
// validation errors found rather than stopping at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateProviders()...)
	errs = append(errs, c.validateOrchestrator()...)
	errs = append(errs, c.validateWordPress()...)

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue, "config: networking.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Networking.Listen)
	if err != nil {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"config: networking.listen must be a valid host:port address, got %q: %w",
			c.Networking.Listen, err,
		))
		return errs
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"config: networking.listen port must be a number, got %q", portStr))
	} else if port < 1 || port > 65535 {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"config: networking.listen port must be between 1 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) validateProviders() []error {
	var errs []error

	seenPriorities := make(map[int]string)
	enabled := 0

	for name, p := range c.Providers {
		if !knownProviders[name] {
			errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
				"config: providers.%s is not a known provider (expected one of [anthropic, gemini, openai])", name))
			continue
		}
		if !p.IsEnabled() {
			continue
		}
		enabled++

		if p.APIKey == "" {
			errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
				"config: providers.%s.api_key must not be empty", name))
		}
		if p.Priority < 1 {
			errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
				"config: providers.%s.priority must be greater than 0, got %d", name, p.Priority))
			continue
		}
		if other, dup := seenPriorities[p.Priority]; dup {
			errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
				"config: providers.%s.priority %d already used by providers.%s", name, p.Priority, other))
			continue
		}
		seenPriorities[p.Priority] = name
	}

	if len(c.Providers) > 0 && enabled == 0 {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"config: at least one provider must be enabled"))
	}

	return errs
}

func (c *Config) validateOrchestrator() []error {
	var errs []error

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"orchestrator.attempt_timeout", c.Orchestrator.AttemptTimeout},
		{"orchestrator.reactivation_interval", c.Orchestrator.ReactivationInterval},
		{"orchestrator.quarantine.network_window", c.Orchestrator.Quarantine.NetworkWindow},
		{"orchestrator.quarantine.rate_limit_window", c.Orchestrator.Quarantine.RateLimitWindow},
		{"orchestrator.quarantine.invalid_response_window", c.Orchestrator.Quarantine.InvalidResponseWindow},
		{"orchestrator.quarantine.max_window", c.Orchestrator.Quarantine.MaxWindow},
	}
	for _, dd := range durations {
		if dd.d <= 0 {
			errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
				"config: %s must be greater than 0, got %s", dd.name, dd.d))
		}
	}

	if c.Orchestrator.Quarantine.MaxWindow > 0 &&
		c.Orchestrator.Quarantine.NetworkWindow > c.Orchestrator.Quarantine.MaxWindow {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"config: orchestrator.quarantine.network_window %s exceeds max_window %s",
			c.Orchestrator.Quarantine.NetworkWindow, c.Orchestrator.Quarantine.MaxWindow))
	}

	return errs
}

func (c *Config) validateWordPress() []error {
	var errs []error

	// The WordPress section is optional: without it, drafts are generated
	// but never published.
	if c.WordPress.BaseURL == "" && c.WordPress.Username == "" && c.WordPress.AppPassword == "" {
		return nil
	}

	if c.WordPress.BaseURL == "" {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"config: wordpress.base_url must not be empty when wordpress is configured"))
	} else if u, err := url.Parse(c.WordPress.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"config: wordpress.base_url must be an absolute URL, got %q", c.WordPress.BaseURL))
	}

	if c.WordPress.Username == "" {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"config: wordpress.username must not be empty when wordpress is configured"))
	}
	if c.WordPress.AppPassword == "" {
		errs = append(errs, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"config: wordpress.app_password must not be empty when wordpress is configured"))
	}

	return errs
}

// WordPressConfigured reports whether a WordPress target is set up.
func (c *Config) WordPressConfigured() bool {
	return c.WordPress.BaseURL != ""
}
