// Package llm provides integration with Anthropic's Claude for describing Eva's photos.
package llm

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client wraps the Anthropic client for photo descriptions
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClient creates a new LLM client. Extra request options (base URL, HTTP client)
// are passed through to the SDK.
func NewClient(apiKey string, model string, maxTokens int, opts ...option.RequestOption) *Client {
	client := anthropic.NewClient(
		append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...,
	)

	return &Client{
		client:    client,
		model:     model,
		maxTokens: int64(maxTokens),
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// MaxTokens returns the configured max tokens
func (c *Client) MaxTokens() int64 {
	return c.maxTokens
}
