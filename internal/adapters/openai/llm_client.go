package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ErrEmptyResponse is returned when the provider answers without any choice
var ErrEmptyResponse = errors.New("empty response from chat completion API")

// Client is an implementation of the LLMClient interface for an
// OpenAI-compatible chat-completion endpoint
type Client struct {
	client  *openai.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a new chat-completion client. An empty baseURL keeps the
// library default.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		client:  openai.NewClientWithConfig(cfg),
		timeout: timeout,
		logger:  logger,
	}
}

// Complete sends the request and returns the content of the first choice
func (c *Client) Complete(ctx context.Context, req core.GenerationRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("Chat completion received",
		zap.String("id", resp.ID),
		zap.String("model", resp.Model),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)))

	return resp.Choices[0].Message.Content, nil
}
