// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draftdesk-dev/draftdesk/internal/draft"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

func newDraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft <topic>",
		Short: "Generate a draft post through the gateway",
		Long:  "Submit a content brief to the running gateway. The gateway dispatches the brief to the highest-priority available AI provider and returns the generated draft. With --publish, the draft is also created on the configured WordPress site.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDraft,
	}

	cmd.Flags().String("address", defaultGatewayAddr, "gateway address")
	cmd.Flags().String("tone", "", "desired tone of voice")
	cmd.Flags().String("instructions", "", "extra instructions for the model")
	cmd.Flags().String("model", "", "override the provider's default model")
	cmd.Flags().Int("max-tokens", 0, "maximum output tokens (0 uses the default)")
	cmd.Flags().Bool("publish", false, "create the result as a WordPress draft")
	cmd.Flags().Bool("full", false, "print the full body instead of a preview")

	return cmd
}

func runDraft(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("address")
	tone, _ := cmd.Flags().GetString("tone")
	instructions, _ := cmd.Flags().GetString("instructions")
	model, _ := cmd.Flags().GetString("model")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	publish, _ := cmd.Flags().GetBool("publish")
	full, _ := cmd.Flags().GetBool("full")

	brief := draft.Brief{
		Topic:        args[0],
		Instructions: instructions,
		Tone:         tone,
		Model:        model,
		MaxTokens:    maxTokens,
		Publish:      publish,
	}

	gw := newGatewayClient(addr)

	var result draft.Draft
	if err := gw.postJSON("/api/v1/drafts", brief, &result); err != nil {
		if ddkerr.HasCode(err, ddkerr.CodeCLIGatewayNotRunning) {
			return ddkerr.New(ddkerr.CodeCLIGatewayNotRunning,
				fmt.Sprintf("gateway at %s is not running (run 'draftdesk start')", addr))
		}
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Title:    %s\n", result.Title)
	_, _ = fmt.Fprintf(out, "Provider: %s (%s)\n", result.ProviderID, result.Model)
	_, _ = fmt.Fprintf(out, "Tokens:   %d in / %d out\n", result.InputTokens, result.OutputTokens)
	if result.WordPressID != 0 {
		_, _ = fmt.Fprintf(out, "Draft:    #%d %s\n", result.WordPressID, result.Link)
	}
	_, _ = fmt.Fprintln(out)

	body := result.Body
	if !full {
		body = previewBody(body)
	}
	_, _ = fmt.Fprintln(out, body)
	return nil
}

const previewLimit = 600

// previewBody truncates long bodies for terminal display.
func previewBody(body string) string {
	if len(body) <= previewLimit {
		return body
	}
	return body[:previewLimit] + "\n... (truncated, use --full for the complete body)"
}
