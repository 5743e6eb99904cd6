// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

// Package draft turns editorial briefs into post drafts. Generation runs
// through the provider orchestrator so a single brief transparently fails
// over across AI providers; finished drafts can optionally be pushed to
// WordPress as draft posts.
package draft

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/draftdesk-dev/draftdesk/internal/orchestrator"
	"github.com/draftdesk-dev/draftdesk/internal/wordpress"
	ddkerr "github.com/draftdesk-dev/draftdesk/pkg/errors"
)

const defaultMaxTokens = 2048

// systemPrompt frames every generation request. The title contract keeps
// parsing deterministic.
const systemPrompt = "You are a staff writer drafting a blog post for a WordPress site. " +
	"Respond with the post title on the first line, prefixed with '# ', followed by the post body in HTML."

// Dispatcher is the slice of the orchestrator the service needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
}

// Publisher is the slice of the WordPress client the service needs.
type Publisher interface {
	CreateDraft(ctx context.Context, title, content string) (*wordpress.Post, error)
}

// Brief describes the post to draft.
type Brief struct {
	Topic        string  `json:"topic"`
	Instructions string  `json:"instructions,omitempty"`
	Tone         string  `json:"tone,omitempty"`
	Model        string  `json:"model,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Temperature  float32 `json:"temperature,omitempty"`
	Publish      bool    `json:"publish,omitempty"`
}

// Draft is a generated post draft.
type Draft struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	ProviderID   string    `json:"provider_id"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CreatedAt    time.Time `json:"created_at"`

	// Set when the draft was pushed to WordPress.
	WordPressID int    `json:"wordpress_id,omitempty"`
	Link        string `json:"link,omitempty"`
}

// Service generates drafts. publisher may be nil, in which case Publish
// requests are rejected.
type Service struct {
	dispatcher Dispatcher
	publisher  Publisher
	nowFunc    func() time.Time
}

// NewService creates a draft service. publisher may be nil when no
// WordPress site is configured.
func NewService(dispatcher Dispatcher, publisher Publisher) *Service {
	return &Service{
		dispatcher: dispatcher,
		publisher:  publisher,
		nowFunc:    time.Now,
	}
}

// SetNowFunc overrides the clock, for tests.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.nowFunc = now
}

// Generate produces one draft from a brief, failing over across providers
// as needed. When brief.Publish is set the draft is also created on the
// configured WordPress site.
func (s *Service) Generate(ctx context.Context, brief Brief) (*Draft, error) {
	if strings.TrimSpace(brief.Topic) == "" {
		return nil, ddkerr.New(ddkerr.CodeDraftInputInvalid, "draft: topic must not be empty")
	}
	if brief.Publish && s.publisher == nil {
		return nil, ddkerr.New(ddkerr.CodeDraftInputInvalid, "draft: publish requested but no wordpress site is configured")
	}

	maxTokens := brief.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	res, err := s.dispatcher.Dispatch(ctx, orchestrator.Request{
		Payload: orchestrator.Payload{
			Model:       brief.Model,
			System:      systemPrompt,
			Prompt:      buildPrompt(brief),
			MaxTokens:   maxTokens,
			Temperature: brief.Temperature,
		},
	})
	if err != nil {
		return nil, ddkerr.Wrap(err, ddkerr.CodeDraftGenerateFailure, "draft: generating content")
	}

	title, body := splitTitle(res.Output.Text, brief.Topic)
	d := &Draft{
		ID:           uuid.NewString(),
		Title:        title,
		Body:         body,
		ProviderID:   res.ProviderID,
		Model:        res.Output.Model,
		InputTokens:  res.Output.InputTokens,
		OutputTokens: res.Output.OutputTokens,
		CreatedAt:    s.nowFunc().UTC(),
	}

	slog.Info("draft generated",
		"draft_id", d.ID,
		"provider", d.ProviderID,
		"model", d.Model,
		"output_tokens", d.OutputTokens,
	)

	if brief.Publish {
		post, err := s.publisher.CreateDraft(ctx, d.Title, d.Body)
		if err != nil {
			// The draft itself is still usable; surface it with the error.
			return d, ddkerr.Wrap(err, ddkerr.CodeDraftPublishFailure, "draft: publishing to wordpress",
				ddkerr.FieldDraftID(d.ID))
		}
		d.WordPressID = post.ID
		d.Link = post.Link
		slog.Info("draft published", "draft_id", d.ID, "wordpress_id", post.ID)
	}

	return d, nil
}

// buildPrompt assembles the user prompt from the brief.
func buildPrompt(brief Brief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a blog post about: %s\n", strings.TrimSpace(brief.Topic))
	if brief.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", brief.Tone)
	}
	if brief.Instructions != "" {
		fmt.Fprintf(&b, "Additional instructions: %s\n", brief.Instructions)
	}
	return b.String()
}

// splitTitle separates the '# ' title line from the body. Falls back to
// the brief topic when the model ignored the contract.
func splitTitle(text, fallback string) (title, body string) {
	trimmed := strings.TrimSpace(text)
	line, rest, _ := strings.Cut(trimmed, "\n")
	if strings.HasPrefix(line, "# ") {
		return strings.TrimSpace(strings.TrimPrefix(line, "# ")), strings.TrimSpace(rest)
	}
	return fallback, trimmed
}
