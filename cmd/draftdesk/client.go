// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by gateway
// commands. Draft generation can take a while when providers fail over,
// hence the generous timeout.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Minute,
}

// gatewayClient provides HTTP access to a running Draftdesk gateway.
type gatewayClient struct {
	baseURL string
	http    *http.Client
}

// newGatewayClient creates a client targeting the given host:port address.
func newGatewayClient(addr string) *gatewayClient {
	return &gatewayClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *gatewayClient) getJSON(path string, dest any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return c.wrapTransportError(err)
	}
	return c.decode(resp, dest)
}

// postJSON performs a POST request with an optional JSON body and decodes
// the JSON response into dest.
func (c *gatewayClient) postJSON(path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return ddkerr.Wrap(err, ddkerr.CodeCLIRequestFailure, "encoding request")
		}
		reader = bytes.NewReader(data)
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return c.wrapTransportError(err)
	}
	return c.decode(resp, dest)
}

func (c *gatewayClient) wrapTransportError(err error) error {
	if isDialError(err) {
		return ddkerr.New(ddkerr.CodeCLIGatewayNotRunning, "gateway is not running (connection refused)")
	}
	return ddkerr.Wrap(err, ddkerr.CodeCLIRequestFailure, "request failed")
}

func (c *gatewayClient) decode(resp *http.Response, dest any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ddkerr.Errorf(ddkerr.CodeCLIRequestFailure,
			"gateway returned status %d: %s", resp.StatusCode, gatewayErrorDetail(body))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return ddkerr.Wrap(err, ddkerr.CodeCLIRequestFailure, "invalid response")
	}
	return nil
}

// gatewayErrorDetail extracts the detail field from a huma error body,
// falling back to the raw payload.
func gatewayErrorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return string(body)
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
