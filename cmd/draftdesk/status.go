// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
	"github.com/draftdesk-dev/draftdesk/pkg/health"
)

const defaultGatewayAddr = "127.0.0.1:8390"

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show provider health",
		Long:  "Query the running gateway for the provider health snapshot. With --watch, keep a live view open that refreshes every 30 seconds.",
		RunE:  runStatus,
	}

	cmd.Flags().String("address", defaultGatewayAddr, "gateway address to check")
	cmd.Flags().Bool("watch", false, "keep watching, refreshing every 30s ('r' reactivates all providers)")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	watch, _ := cmd.Flags().GetBool("watch")
	gw := newGatewayClient(addr)

	if watch {
		p := tea.NewProgram(newStatusModel(gw, addr))
		_, err := p.Run()
		return err
	}

	out := cmd.OutOrStdout()

	snapshot, err := fetchProviders(gw)
	if err != nil {
		if ddkerr.HasCode(err, ddkerr.CodeCLIGatewayNotRunning) {
			_, _ = fmt.Fprintf(out, "Gateway at %s is not running (run 'draftdesk start')\n", addr)
			return nil
		}
		return err
	}

	_, _ = fmt.Fprintf(out, "Gateway at %s\n\n", addr)
	_, _ = fmt.Fprintf(out, "%-4s %-20s %-12s %-10s %s\n", "PRI", "PROVIDER", "STATE", "FAILURES", "DETAIL")
	for _, p := range snapshot {
		_, _ = fmt.Fprintf(out, "%-4d %-20s %-12s %-10d %s\n",
			p.Priority, p.DisplayName, string(p.State), p.ConsecutiveFailures, statusDetail(p))
	}
	return nil
}

// fetchProviders retrieves the provider snapshot from the gateway.
func fetchProviders(gw *gatewayClient) ([]health.ProviderStatus, error) {
	var body struct {
		Providers []health.ProviderStatus `json:"providers"`
	}
	if err := gw.getJSON("/api/v1/providers", &body); err != nil {
		return nil, err
	}
	return body.Providers, nil
}

// reactivateProviders asks the gateway to lift every quarantine.
func reactivateProviders(gw *gatewayClient) ([]health.ProviderStatus, error) {
	var body struct {
		Providers []health.ProviderStatus `json:"providers"`
	}
	if err := gw.postJSON("/api/v1/providers/reactivate", nil, &body); err != nil {
		return nil, err
	}
	return body.Providers, nil
}

// statusDetail renders the human-readable tail of a status row.
func statusDetail(p health.ProviderStatus) string {
	if p.Available {
		return "ok"
	}
	if p.QuarantinedUntil == nil {
		return "quarantined until manual reactivation: " + p.LastError
	}
	remaining := time.Until(*p.QuarantinedUntil).Round(time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("retry in %s: %s", remaining, p.LastError)
}
