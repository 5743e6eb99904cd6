// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/draftdesk-dev/draftdesk/internal/secrets"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// secretStoreFactory creates a secrets.Store. It is a package-level variable
// so tests can substitute a mock implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage secrets stored in the OS keyring",
		Long:  "Store, list, and delete secrets kept under the Draftdesk service in the operating system keyring. Config values of the form keyring://draftdesk/<name> resolve against these entries.",
	}

	cmd.AddCommand(
		newSecretSetCmd(),
		newSecretListCmd(),
		newSecretDeleteCmd(),
	)

	return cmd
}

func newSecretSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Store a secret, reading its value from stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretSet,
	}
}

func newSecretListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored secret names",
		RunE:  runSecretList,
	}
}

func newSecretDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a secret by name",
		Args:  cobra.ExactArgs(1),
		RunE:  runSecretDelete,
	}
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	// Read the value from stdin so it never lands in shell history.
	reader := bufio.NewReader(cmd.InOrStdin())
	value, err := reader.ReadString('\n')
	if err != nil && value == "" {
		return ddkerr.Errorf(ddkerr.CodeCLIInputInvalid, "reading secret value: %w", err)
	}
	value = strings.TrimRight(value, "\r\n")
	if value == "" {
		return ddkerr.New(ddkerr.CodeCLIInputInvalid, "secret value must not be empty")
	}

	store := secretStoreFactory()
	if err := store.Store(secrets.DefaultService, name, value); err != nil {
		return ddkerr.Wrapf(err, ddkerr.CodeSecretStoreFailure, "storing secret %q", name)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored secret: %s (reference it as keyring://%s/%s)\n",
		name, secrets.DefaultService, name)
	return nil
}

func runSecretList(cmd *cobra.Command, _ []string) error {
	store := secretStoreFactory()
	keys, err := store.List(secrets.DefaultService)
	if err != nil {
		return ddkerr.Wrap(err, ddkerr.CodeSecretStoreFailure, "listing secrets")
	}

	out := cmd.OutOrStdout()
	if len(keys) == 0 {
		_, _ = fmt.Fprintln(out, "No secrets stored.")
		return nil
	}

	for _, k := range keys {
		_, _ = fmt.Fprintln(out, k)
	}
	return nil
}

func runSecretDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store := secretStoreFactory()

	if err := store.Delete(secrets.DefaultService, name); err != nil {
		if ddkerr.HasCode(err, ddkerr.CodeSecretNotFound) {
			return ddkerr.Errorf(ddkerr.CodeSecretNotFound, "secret %q not found", name)
		}
		return ddkerr.Wrapf(err, ddkerr.CodeSecretDeleteFailure, "deleting secret %q", name)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret: %s\n", name)
	return nil
}
