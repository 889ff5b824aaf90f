package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"TechNewsAgent/internal/config"
	"TechNewsAgent/internal/ports"
)

// ChatGPTClient implements ports.CompletionClient backed by OpenAI-compatible APIs.
type ChatGPTClient struct {
	client *openai.Client
	model  string
}

var _ ports.CompletionClient = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration. The SDK's own retries are
// disabled; a failed call is reported once.
func NewChatGPTClient(cfg config.LLMConfig, httpClient *http.Client) (*ChatGPTClient, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, fmt.Errorf("openai api key: %w", config.ErrMissingCredential)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.OpenAIAPIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(opts...)
	return &ChatGPTClient{client: &client, model: cfg.Model}, nil
}

// Complete sends one system and one user message and returns the assistant's text.
func (c *ChatGPTClient) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
