// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/abriltello/portafolioAI/internal/common"
	"github.com/abriltello/portafolioAI/internal/interfaces"
)

const DefaultModel = "gemini-2.5-flash"

// Client implements the GeminiClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// GenerateContent generates text from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("prompt_len", len(prompt)).Msg("Generating content")

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse concatenates the text parts of the first candidate
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no content generated")
	}
	return text, nil
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
