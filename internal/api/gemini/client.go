package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/Alias1177/fxanalyst/internal/analyze"
	"github.com/Alias1177/fxanalyst/models"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// ErrAllModelsFailed is returned when no configured model produced an answer.
var ErrAllModelsFailed = errors.New("all oracle models failed")

// Client talks to Gemini through its OpenAI-compatible chat endpoint
type Client struct {
	client *openai.Client
	models []string
	logger zerolog.Logger
}

// ClientOptions holds options for creating a new oracle client
type ClientOptions struct {
	APIKey  string
	BaseURL string
	Models  []string // tried in order
	Timeout time.Duration
}

// NewClient creates a new oracle client
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		models: opts.Models,
		logger: log.With().Str("component", "gemini_client").Logger(),
	}
}

// Forecast sends the prompt to each model in turn until one answers.
func (c *Client) Forecast(ctx context.Context, prompt string) (*models.Forecast, error) {
	lastErr := errors.New("no models configured")

	for _, model := range c.models {
		text, err := c.complete(ctx, model, prompt)
		if err != nil {
			c.logger.Warn().Err(err).Str("model", model).Msg("Model failed, trying next")
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		direction := analyze.ExtractDirection(text)
		c.logger.Info().Str("model", model).Str("direction", string(direction)).Msg("Forecast received")

		return &models.Forecast{
			Direction: direction,
			Rationale: strings.TrimSpace(text),
			Model:     model,
		}, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrAllModelsFailed, lastErr)
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	c.logger.Debug().Str("model", model).Str("prompt", prompt).Msg("Sending prompt")

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", model, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("model %s: empty response", model)
	}

	return resp.Choices[0].Message.Content, nil
}
