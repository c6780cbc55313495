// Package assistant wraps the Gemini API for chat replies, upload insights
// and long-form report generation.
//
// The client is constructed once and injected into the handlers that need
// it. Initialization failure (missing key, unreachable API) is reported
// explicitly at startup instead of being probed lazily per request.
package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Message is one turn of chat history handed to the model.
type Message struct {
	Role    string
	Content string
}

// Client is a configured Gemini client bound to a single model name.
type Client struct {
	genai *genai.Client
	model string
}

// New creates an assistant client. It fails when no API key is configured
// or the underlying client cannot be created; the caller decides whether to
// run degraded without one.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("assistant: GEMINI_API_KEY is not set")
	}
	if model == "" {
		return nil, fmt.Errorf("assistant: model name is empty")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: create genai client: %w", err)
	}

	return &Client{genai: c, model: model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// AutoAnalysis produces a short summary of a freshly computed analytics
// payload, shown as the first assistant message after an upload.
func (c *Client) AutoAnalysis(ctx context.Context, analyticsJSON string) (string, error) {
	prompt := buildAutoAnalysisPrompt(analyticsJSON)
	return c.generate(ctx, prompt)
}

// ChatReply answers the latest user message given optional analytics
// context and recent chat history.
func (c *Client) ChatReply(ctx context.Context, analyticsContext string, history []Message) (string, error) {
	prompt := buildChatPrompt(analyticsContext, history)
	return c.generate(ctx, prompt)
}

// Report generates one of the canned long-form reports over an analytics
// payload. The kind must be one of ReportKinds.
func (c *Client) Report(ctx context.Context, kind, analyticsJSON, filename string, totalRows int) (string, error) {
	prompt, err := buildReportPrompt(kind, analyticsJSON, filename, totalRows)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, prompt)
}
