// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package anthropic

import (
	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/draftdesk-dev/draftdesk/internal/orchestrator"
)

// ClassifyError exposes classifyError for white-box testing.
var ClassifyError = classifyError

// RetryAfterSeconds exposes retryAfterSeconds for white-box testing.
var RetryAfterSeconds = retryAfterSeconds

// BuildParams exposes buildParams for white-box testing.
var BuildParams = func(a *Adapter, payload orchestrator.Payload) anthropicsdk.MessageNewParams {
	return a.buildParams(payload)
}
