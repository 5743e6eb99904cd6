// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/draftdesk-dev/draftdesk/internal/config"
	"github.com/draftdesk-dev/draftdesk/internal/secrets"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// NewRootCmd creates the root draftdesk command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "draftdesk",
		Short:         "Draftdesk — AI draft generation gateway for WordPress",
		Long:          "Draftdesk turns editorial briefs into WordPress post drafts, failing over across AI providers as they degrade.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	// Global flags — these map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newStartCmd(),
		newStatusCmd(),
		newDraftCmd(),
		newSecretCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly. keyring:// values
// are resolved after the file is read.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return ddkerr.Errorf(ddkerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// Auto-discover draftdesk.yaml from standard locations.
		// Note: SetConfigType is intentionally omitted. When set, Viper
		// falls back to trying the bare config name without extension,
		// which collides with the ./draftdesk binary in the project root.
		v.SetConfigName("draftdesk")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/draftdesk")
		v.AddConfigPath("/etc/draftdesk")
		// No config file is fine — defaults and env vars still apply.
		// Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return ddkerr.Errorf(ddkerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			// No config found anywhere — bootstrap a default to ~/.config/draftdesk/.
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return ddkerr.Errorf(ddkerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	config.WarnInsecurePermissions(v.ConfigFileUsed())
	secrets.ResolveViperSecrets(v, secretStoreFactory())

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return ddkerr.Errorf(ddkerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}
