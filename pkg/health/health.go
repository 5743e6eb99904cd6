// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package health

import "time"

// State is the availability state of a provider.
type State string

const (
	StateAvailable   State = "available"
	StateQuarantined State = "quarantined"
)

// ProviderStatus exposes the current health of one provider for monitoring
// and operator visibility. All fields are point-in-time snapshots safe to
// serialize to JSON.
type ProviderStatus struct {
	ID                  string     `json:"id"`
	DisplayName         string     `json:"display_name"`
	Priority            int        `json:"priority"`
	Available           bool       `json:"available"`
	State               State      `json:"state"`
	QuarantinedUntil    *time.Time `json:"quarantined_until,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastError           string     `json:"last_error,omitempty"`
}
