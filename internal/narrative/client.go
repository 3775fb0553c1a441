package narrative

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Defaults for the hosted chat-completions endpoint.
const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "mixtral-8x7b-32768"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 4096
	DefaultTimeout     = 60 * time.Second
)

// Generator turns a system and user prompt into free text.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// ClientConfig configures a ChatClient. Zero values take the defaults.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// ChatClient calls an OpenAI-compatible chat-completions endpoint.
type ChatClient struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewChatClient returns a client for cfg.
func NewChatClient(cfg ClientConfig) *ChatClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = baseURL
	oc.HTTPClient = &http.Client{Timeout: timeout}

	c := &ChatClient{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.temperature == 0 {
		c.temperature = DefaultTemperature
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	return c
}

// ErrEmptyResponse is returned when the endpoint answers without choices.
var ErrEmptyResponse = errors.New("empty completion")

// Generate sends one system and one user message and returns the first
// choice's content.
func (c *ChatClient) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("chat completion: status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", fmt.Errorf("chat completion: status %d: %s", reqErr.HTTPStatusCode, strings.TrimSpace(string(reqErr.Body)))
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
