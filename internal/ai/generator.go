// Package ai generates grant proposal text with a chain of OpenAI models and
// a deterministic offline draft as the last resort.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rpggio/grantmate/internal/domain/proposal"
)

// Fields is the form content a draft is generated from.
type Fields = proposal.Fields

const (
	DefaultPrimaryModel  = "o1-preview"
	DefaultFallbackModel = "gpt-4o-mini"

	// EmptyOutput is returned when a model answers with no content.
	EmptyOutput = "Failed to generate proposal content"

	systemPrompt = "You are a professional grant writer with extensive experience in writing successful grant proposals. Your writing is persuasive, evidence-based, and follows best practices for grant writing."

	fallbackMaxTokens   = 4000
	fallbackTemperature = 0.7
)

// Config configures a Generator.
type Config struct {
	APIKey        string
	BaseURL       string
	PrimaryModel  string
	FallbackModel string
	HTTPClient    *http.Client
}

// Generator implements proposal.Generator.
type Generator struct {
	client        *Client
	enabled       bool
	primaryModel  string
	fallbackModel string
	cache         Cache
	logger        *slog.Logger
}

// NewGenerator creates a Generator. cache may be nil.
func NewGenerator(cfg Config, cache Cache, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.PrimaryModel == "" {
		cfg.PrimaryModel = DefaultPrimaryModel
	}
	if cfg.FallbackModel == "" {
		cfg.FallbackModel = DefaultFallbackModel
	}
	return &Generator{
		client:        NewClient(cfg.APIKey, cfg.BaseURL, cfg.HTTPClient),
		enabled:       cfg.APIKey != "",
		primaryModel:  cfg.PrimaryModel,
		fallbackModel: cfg.FallbackModel,
		cache:         cache,
		logger:        logger,
	}
}

// Generate returns proposal text for fields. Without an API key it returns
// FallbackDraft. A rate-limited or out-of-quota primary model is retried on
// the fallback model, and if that fails too the offline draft is returned.
// Other primary failures wrap ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, fields Fields) (string, error) {
	if !g.enabled {
		return FallbackDraft(fields), nil
	}

	key := CacheKey(g.primaryModel, fields)
	if draft, ok := g.cached(ctx, key); ok {
		return draft, nil
	}

	prompt := buildPrompt(fields)
	text, err := g.client.Complete(ctx, ChatRequest{
		Model: g.primaryModel,
		Messages: []Message{
			{Role: "user", Content: systemPrompt + "\n\n" + prompt},
		},
	})
	if err == nil {
		return g.finish(ctx, key, text), nil
	}

	g.logger.Error("primary model failed", "model", g.primaryModel, "error", err)
	if !IsQuotaError(err) {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	g.logger.Info("trying fallback model", "model", g.fallbackModel)
	temperature := fallbackTemperature
	text, err = g.client.Complete(ctx, ChatRequest{
		Model: g.fallbackModel,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   fallbackMaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		g.logger.Error("fallback model failed, returning offline draft", "model", g.fallbackModel, "error", err)
		return FallbackDraft(fields), nil
	}
	return g.finish(ctx, key, text), nil
}

func (g *Generator) cached(ctx context.Context, key string) (string, bool) {
	if g.cache == nil {
		return "", false
	}
	draft, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("draft cache lookup failed", "error", err)
		return "", false
	}
	if ok {
		g.logger.Debug("draft cache hit", "key", key)
	}
	return draft, ok
}

func (g *Generator) finish(ctx context.Context, key, text string) string {
	if text == "" {
		return EmptyOutput
	}
	if g.cache != nil {
		if err := g.cache.Set(ctx, key, text); err != nil {
			g.logger.Warn("draft cache store failed", "error", err)
		}
	}
	return text
}

func buildPrompt(f Fields) string {
	return fmt.Sprintf(`
You are a professional grant writer. Generate a full grant proposal draft based on the following information:

Organization Name: %s
Project Title: %s
Mission Statement: %s
Project Description: %s
Target Population: %s
Amount Requested: $%s
Timeline: %s
Goals and Outcomes: %s

The proposal should include:
- Executive Summary (2-3 paragraphs)
- Statement of Need (3-4 paragraphs with compelling statistics and evidence)
- Project Description (detailed methodology, implementation plan, 4-5 paragraphs)
- Goals & Objectives (specific, measurable outcomes with timeline)
- Budget Justification (detailed breakdown of how funds will be used)
- Evaluation Plan (metrics, assessment methods, accountability measures)
- Organizational Capacity (demonstrate ability to execute the project)
- Sustainability Plan (long-term impact and continuation)

The tone should be formal, persuasive, and clearly show how the project aligns with typical funder priorities. Use professional language and include compelling evidence for the need. Make it comprehensive and ready for submission.

Format the response with clear section headers and professional formatting.
`, f.OrganizationName, f.ProjectTitle, f.Mission, f.Description, f.TargetPopulation, f.Amount, f.Timeline, f.Goals)
}
