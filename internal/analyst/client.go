// Package analyst turns questionnaire answers into analysis prompts and
// runs them against the configured model provider.
package analyst

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/llm"
	"github.com/ziadkadry99/green-analyzer/internal/usage"
)

// Tier selects the quick or the deep model.
type Tier string

const (
	TierFlash Tier = "flash"
	TierPro   Tier = "pro"
)

// ErrBudgetExceeded is returned once the configured spend cap is reached.
var ErrBudgetExceeded = errors.New("analysis budget exceeded")

// Query is one remote analysis call.
type Query struct {
	// Name labels the call in the usage ledger.
	Name   string
	Prompt string
	Tier   Tier
	Search bool
	Maps   bool
	Near   *llm.LatLng
}

// Querier runs one query and returns its text and citations.
type Querier interface {
	Run(ctx context.Context, q Query) (analysis.Content, error)
}

// Recorder stores one usage entry.
type Recorder interface {
	Record(ctx context.Context, e usage.Entry) error
}

// Models names the model behind each tier.
type Models struct {
	Flash string
	Pro   string
}

// Client is a Querier over an llm.Provider.
type Client struct {
	provider llm.Provider
	models   Models
	recorder Recorder
	logger   *slog.Logger
	budget   float64

	mu    sync.Mutex
	spent float64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRecorder records every call.
func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) { c.recorder = r }
}

// WithBudget refuses further calls once estimated spend reaches usd.
// Zero disables the cap.
func WithBudget(usd float64) ClientOption {
	return func(c *Client) { c.budget = usd }
}

// NewClient creates a client for provider.
func NewClient(provider llm.Provider, models Models, logger *slog.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{provider: provider, models: models, logger: logger}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) model(t Tier) string {
	if t == TierPro {
		return c.models.Pro
	}
	return c.models.Flash
}

// Spent returns the estimated spend since the client was created.
func (c *Client) Spent() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spent
}

// Run sends q and converts the response. Errors are wrapped with a fixed
// prefix so callers can surface them verbatim.
func (c *Client) Run(ctx context.Context, q Query) (analysis.Content, error) {
	tier := q.Tier
	if tier == "" {
		tier = TierFlash
	}
	model := c.model(tier)

	c.mu.Lock()
	over := c.budget > 0 && c.spent >= c.budget
	c.mu.Unlock()
	if over {
		return analysis.Content{}, fmt.Errorf("failed to get response from analysis backend: %w", ErrBudgetExceeded)
	}

	req := llm.CompletionRequest{
		Model:       model,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: q.Prompt}},
		Temperature: 0.4,
		Near:        q.Near,
	}
	if q.Search {
		req.Tools = append(req.Tools, llm.ToolWebSearch)
	}
	if q.Maps {
		req.Tools = append(req.Tools, llm.ToolMaps)
	}

	resp, err := c.provider.Complete(ctx, req)
	if err != nil {
		c.record(ctx, q.Name, tier, model, 0, 0, usage.StatusError)
		c.logger.Error("analysis call failed", "query", q.Name, "model", model, "error", err)
		return analysis.Content{}, fmt.Errorf("failed to get response from analysis backend: %w", err)
	}

	cost := llm.EstimateCost(model, resp.InputTokens, resp.OutputTokens)
	c.mu.Lock()
	c.spent += cost
	c.mu.Unlock()
	c.record(ctx, q.Name, tier, model, resp.InputTokens, resp.OutputTokens, usage.StatusOK)
	c.logger.Debug("analysis call complete", "query", q.Name, "model", model,
		"input_tokens", resp.InputTokens, "output_tokens", resp.OutputTokens, "sources", len(resp.Citations))

	return analysis.Content{Text: strings.TrimSpace(resp.Content), Sources: convertCitations(resp.Citations)}, nil
}

func (c *Client) record(ctx context.Context, name string, tier Tier, model string, in, out int, status string) {
	if c.recorder == nil {
		return
	}
	e := usage.Entry{
		AnalysisKey:  name,
		Tier:         string(tier),
		Model:        model,
		InputTokens:  in,
		OutputTokens: out,
		CostUSD:      llm.EstimateCost(model, in, out),
		Status:       status,
	}
	// The ledger must not fail an analysis that already succeeded.
	if err := c.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		c.logger.Warn("recording usage failed", "query", name, "error", err)
	}
}

func convertCitations(in []llm.Citation) []analysis.Citation {
	out := make([]analysis.Citation, 0, len(in))
	for _, c := range in {
		kind := analysis.CitationWeb
		if c.Kind == llm.CitationMaps {
			kind = analysis.CitationMap
		}
		out = append(out, analysis.Citation{Kind: kind, URI: c.URI, Title: c.Title})
	}
	return out
}
