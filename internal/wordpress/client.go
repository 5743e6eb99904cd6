// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

// Package wordpress is a thin client for the WordPress REST API, covering
// the handful of endpoints Draftdesk needs: creating and updating draft
// posts, listing posts of the configured type, and uploading media.
// Authentication uses WordPress application passwords over HTTP Basic auth.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

const apiBase = "/wp-json/wp/v2"

// Config holds connection settings for one WordPress site.
type Config struct {
	BaseURL     string
	Username    string
	AppPassword string
	PostType    string // REST collection name, "posts" when empty
	HTTPClient  *http.Client
}

// Client talks to a single WordPress site.
type Client struct {
	baseURL     string
	username    string
	appPassword string
	postType    string
	http        *http.Client
}

// Post is a WordPress post as Draftdesk sees it.
type Post struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content,omitempty"`
	Status   string    `json:"status"`
	Link     string    `json:"link,omitempty"`
	Modified time.Time `json:"modified,omitempty"`
}

// Media is an uploaded media item.
type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type"`
}

// rendered is the {"rendered": "..."} shape WordPress uses for title and
// content fields in responses.
type rendered struct {
	Rendered string `json:"rendered"`
}

type postResponse struct {
	ID       int      `json:"id"`
	Title    rendered `json:"title"`
	Content  rendered `json:"content"`
	Status   string   `json:"status"`
	Link     string   `json:"link"`
	Modified string   `json:"modified_gmt"`
}

// New creates a WordPress client. BaseURL, Username and AppPassword are
// required.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ddkerr.New(ddkerr.CodeConfigValidateInvalidValue, "wordpress: base_url must not be empty")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ddkerr.Errorf(ddkerr.CodeConfigValidateInvalidValue,
			"wordpress: base_url must be an absolute URL, got %q", cfg.BaseURL)
	}
	if cfg.Username == "" || cfg.AppPassword == "" {
		return nil, ddkerr.New(ddkerr.CodeConfigValidateInvalidValue,
			"wordpress: username and app_password must not be empty")
	}

	postType := cfg.PostType
	if postType == "" {
		postType = "posts"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		username:    cfg.Username,
		appPassword: cfg.AppPassword,
		postType:    postType,
		http:        httpClient,
	}, nil
}

// CreateDraft creates a new post with status "draft" and returns it.
func (c *Client) CreateDraft(ctx context.Context, title, content string) (*Post, error) {
	body := map[string]any{
		"title":   title,
		"content": content,
		"status":  "draft",
	}
	var resp postResponse
	if err := c.do(ctx, http.MethodPost, c.collectionPath(), body, &resp); err != nil {
		return nil, err
	}
	return resp.toPost(), nil
}

// UpdatePost updates the title and/or content of an existing post. Empty
// fields are left unchanged on the server.
func (c *Client) UpdatePost(ctx context.Context, id int, title, content string) (*Post, error) {
	body := map[string]any{}
	if title != "" {
		body["title"] = title
	}
	if content != "" {
		body["content"] = content
	}
	if len(body) == 0 {
		return nil, ddkerr.New(ddkerr.CodeWordPressRequestFailure, "wordpress: update requires a title or content")
	}

	var resp postResponse
	path := fmt.Sprintf("%s/%d", c.collectionPath(), id)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return resp.toPost(), nil
}

// ListPosts returns up to perPage posts of the configured type with the
// given status ("draft", "publish", or "any").
func (c *Client) ListPosts(ctx context.Context, status string, perPage int) ([]Post, error) {
	if perPage <= 0 {
		perPage = 10
	}
	q := url.Values{}
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("context", "edit")
	if status != "" {
		q.Set("status", status)
	}

	var resp []postResponse
	if err := c.do(ctx, http.MethodGet, c.collectionPath()+"?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(resp))
	for _, r := range resp {
		posts = append(posts, *r.toPost())
	}
	return posts, nil
}

// UploadMedia uploads a file to the media library and returns the created
// item. contentType is the MIME type of data.
func (c *Client) UploadMedia(ctx context.Context, filename, contentType string, data []byte) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiBase+"/media", bytes.NewReader(data))
	if err != nil {
		return nil, ddkerr.Wrap(err, ddkerr.CodeWordPressRequestFailure, "wordpress: building media request")
	}
	req.SetBasicAuth(c.username, c.appPassword)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ddkerr.Wrap(err, ddkerr.CodeWordPressRequestFailure, "wordpress: uploading media")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var media Media
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return nil, ddkerr.Wrap(err, ddkerr.CodeWordPressResponseInvalid, "wordpress: decoding media response")
	}
	return &media, nil
}

func (c *Client) collectionPath() string {
	return apiBase + "/" + c.postType
}

// do issues one JSON request against the REST API and decodes the response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return ddkerr.Wrap(err, ddkerr.CodeWordPressRequestFailure, "wordpress: encoding request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return ddkerr.Wrapf(err, ddkerr.CodeWordPressRequestFailure, "wordpress: building %s %s", method, path)
	}
	req.SetBasicAuth(c.username, c.appPassword)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ddkerr.Wrapf(err, ddkerr.CodeWordPressRequestFailure, "wordpress: %s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ddkerr.Wrapf(err, ddkerr.CodeWordPressResponseInvalid, "wordpress: decoding %s %s response", method, path)
	}
	return nil
}

// checkStatus maps non-2xx responses to coded errors, surfacing the
// WordPress error message when the body carries one.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	detail := ""
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			detail = ": " + apiErr.Message
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ddkerr.Errorf(ddkerr.CodeWordPressAuthUnauthorized,
			"wordpress: authentication rejected (HTTP %d)%s", resp.StatusCode, detail)
	case resp.StatusCode == http.StatusNotFound:
		return ddkerr.Errorf(ddkerr.CodeWordPressEntityNotFound,
			"wordpress: not found (HTTP %d)%s", resp.StatusCode, detail)
	default:
		return ddkerr.Errorf(ddkerr.CodeWordPressRequestFailure,
			"wordpress: request failed (HTTP %d)%s", resp.StatusCode, detail)
	}
}

func (r postResponse) toPost() *Post {
	p := &Post{
		ID:      r.ID,
		Title:   r.Title.Rendered,
		Content: r.Content.Rendered,
		Status:  r.Status,
		Link:    r.Link,
	}
	if r.Modified != "" {
		// WordPress returns GMT timestamps without a zone suffix.
		if ts, err := time.Parse("2006-01-02T15:04:05", r.Modified); err == nil {
			p.Modified = ts.UTC()
		}
	}
	return p
}
