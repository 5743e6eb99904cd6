// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package gemini

// ClassifyError exposes classifyError for white-box testing.
var ClassifyError = classifyError
