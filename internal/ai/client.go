// Package ai wraps the Anthropic API behind a small completion client with
// retry, rate limiting, and a concurrency cap, plus robust JSON extraction
// from model output.
package ai

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const (
	// ModelDefault handles docstring generation and review.
	ModelDefault = "claude-sonnet-4-5-20250929"

	// ModelFast is the cost-efficient tier for short prompts.
	ModelFast = "claude-3-5-haiku-20241022"
)

// GetDefaultModel returns the generation model, honoring the DOCSMITH_MODEL
// environment override.
func GetDefaultModel() string {
	if model := os.Getenv("DOCSMITH_MODEL"); model != "" {
		return model
	}
	return ModelDefault
}

// Usage accumulates token counts across all calls made by one client, for
// the end-of-run report.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	Calls        int64
}

// Config holds client construction options.
type Config struct {
	APIKey string // if empty, read from ANTHROPIC_API_KEY
	Model  string // if empty, GetDefaultModel()
	Retry  RetryConfig
}

// Client is a rate-limited, retrying Anthropic completion client. Safe for
// concurrent use.
type Client struct {
	client  *anthropic.Client
	model   string
	retry   RetryConfig
	limiter *rate.Limiter
	sem     *semaphore.Weighted

	inputTokens  atomic.Int64
	outputTokens atomic.Int64
	calls        atomic.Int64
}

// NewClient builds a Client from cfg. The API key must be present in cfg or
// in the ANTHROPIC_API_KEY environment variable.
func NewClient(cfg Config) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel()
	}

	retry := cfg.Retry
	if retry.Timeout == 0 {
		retry = DefaultRetryConfig()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	c := &Client{
		client: &client,
		model:  model,
		retry:  retry,
	}
	if retry.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(retry.RequestsPerSecond), 1)
	}
	if retry.MaxConcurrentCalls > 0 {
		c.sem = semaphore.NewWeighted(int64(retry.MaxConcurrentCalls))
	}
	return c, nil
}

// Model returns the model the client was configured with.
func (c *Client) Model() string { return c.model }

// Usage returns the cumulative token usage so far.
func (c *Client) Usage() Usage {
	return Usage{
		InputTokens:  c.inputTokens.Load(),
		OutputTokens: c.outputTokens.Load(),
		Calls:        c.calls.Load(),
	}
}

// Complete sends prompt as a single user message and returns the model's
// text response. operation names the call for logs and error messages;
// maxRetries caps retries for this call (0 means no retry), independent of
// the client-wide backoff settings.
func (c *Client) Complete(ctx context.Context, operation, prompt string, maxTokens, maxRetries int) (string, error) {
	if maxTokens == 0 {
		maxTokens = 4096
	}

	start := time.Now()
	var response *anthropic.Message
	err := c.retryWithBackoff(ctx, operation, maxRetries, func(attemptCtx context.Context) error {
		resp, apiErr := c.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(c.model),
			MaxTokens: int64(maxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: anthropic API call failed: %w", operation, err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	c.inputTokens.Add(response.Usage.InputTokens)
	c.outputTokens.Add(response.Usage.OutputTokens)
	c.calls.Add(1)
	logCall(operation, response.Usage.InputTokens, response.Usage.OutputTokens, time.Since(start))

	return text, nil
}
