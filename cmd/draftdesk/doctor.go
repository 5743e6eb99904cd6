// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check binary health, the gateway, configuration, the WordPress connection, and disk space.",
		RunE:  runDoctor,
	}

	cmd.Flags().String("address", defaultGatewayAddr, "gateway address to check")

	return cmd
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	addr, _ := cmd.Flags().GetString("address")

	checks := []struct {
		name string
		fn   func() string
	}{
		{"Binary", checkBinary},
		{"Platform", checkPlatform},
		{"Gateway", func() string { return checkGateway(addr) }},
		{"Config", checkConfig},
		{"Providers", checkProviders},
		{"WordPress", checkWordPress},
		{"Disk Space", checkDiskSpace},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-20s %s\n", c.name+":", c.fn()); err != nil {
			return err
		}
	}

	return nil
}

func checkBinary() string {
	return fmt.Sprintf("draftdesk %s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}

func checkPlatform() string {
	return fmt.Sprintf("%s/%s, Go %s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkGateway(addr string) string {
	gw := newGatewayClient(addr)
	var body struct {
		Status             string `json:"status"`
		ProvidersTotal     int    `json:"providers_total"`
		ProvidersAvailable int    `json:"providers_available"`
	}
	if err := gw.getJSON("/api/v1/status", &body); err != nil {
		if ddkerr.HasCode(err, ddkerr.CodeCLIGatewayNotRunning) {
			return fmt.Sprintf("not running at %s (run 'draftdesk start')", addr)
		}
		return fmt.Sprintf("error: %s", err)
	}
	return fmt.Sprintf("%s at %s (%d/%d providers available)",
		body.Status, addr, body.ProvidersAvailable, body.ProvidersTotal)
}

func checkConfig() string {
	cfgFile := viper.ConfigFileUsed()
	if cfgFile != "" {
		return fmt.Sprintf("loaded from %s", cfgFile)
	}
	return "using defaults (no config file found)"
}

func checkProviders() string {
	providers := viper.GetStringMap("providers")
	if len(providers) == 0 {
		return "none configured"
	}
	return fmt.Sprintf("%d configured", len(providers))
}

func checkWordPress() string {
	baseURL := viper.GetString("wordpress.base_url")
	if baseURL == "" {
		return "not configured (generate-only mode)"
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/wp-json/")
	if err != nil {
		return fmt.Sprintf("unreachable: %s", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Sprintf("%s responded with status %d", baseURL, resp.StatusCode)
	}
	return fmt.Sprintf("reachable at %s", baseURL)
}

func checkDiskSpace() string {
	path := filepath.Dir(viper.ConfigFileUsed())
	if path == "." || path == "" {
		path, _ = os.UserHomeDir()
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return fmt.Sprintf("unable to check: %s", err)
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	return formatBytes(availBytes) + " available"
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
