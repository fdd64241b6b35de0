package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/khoahotran/studyplan/internal/application/service"
)

const (
	ollamaBaseURL     = "http://localhost:11434/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

// OpenAIClient talks to OpenAI and to any OpenAI-compatible API (Ollama, OpenRouter) via BaseURL.
type OpenAIClient struct {
	client *openai.Client
	model  string
	name   string
}

func NewOpenAIClient(name, apiKey, baseURL, model string, timeout time.Duration) (*OpenAIClient, error) {
	switch name {
	case "ollama":
		if apiKey == "" {
			apiKey = "ollama"
		}
		if baseURL == "" {
			baseURL = ollamaBaseURL
		}
	case "openrouter":
		if baseURL == "" {
			baseURL = openRouterBaseURL
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  resolveModel(model, openaiModels),
		name:   name,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoContent
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) ModelID() string { return c.model }

func (c *OpenAIClient) Provider() string { return c.name }

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
