// Package llm is the narrow boundary to the language-model service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"crypto-query-lab/internal/config"
)

// ErrEmptyResponse is returned when the model answers with no content.
var ErrEmptyResponse = errors.New("llm: empty response")

// Client sends one system+user exchange and returns the model's reply.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 20 * time.Second

// EinoClient implements Client on top of an eino chat model.
// Each call is attempted once and bounded by the configured timeout.
type EinoClient struct {
	model   model.BaseChatModel
	timeout time.Duration
}

// NewEinoClient wraps chat model m.
func NewEinoClient(m model.BaseChatModel, timeout time.Duration) *EinoClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &EinoClient{model: m, timeout: timeout}
}

// NewOpenAI creates a client for an OpenAI-compatible endpoint. It returns
// nil and no error when the configuration has the model switched off.
func NewOpenAI(ctx context.Context, cfg config.LLMConfig) (*EinoClient, error) {
	if !cfg.Active() {
		return nil, nil
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return NewEinoClient(chatModel, cfg.Timeout), nil
}

// Complete implements Client.
func (c *EinoClient) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}
	resp, err := c.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Content), nil
}

// CleanJSON strips markdown fences and surrounding prose from a model reply
// that should contain a single JSON object.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
