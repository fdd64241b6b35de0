package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/studyplan/internal/config"
	"github.com/khoahotran/studyplan/pkg/logger"
)

// NewGenerativeClient builds the backend selected by cfg.LLM.Provider wrapped in call logging.
func NewGenerativeClient(ctx context.Context, cfg config.Config, log logger.Logger) (*LoggingClient, error) {
	c := cfg.LLM
	var (
		backend Backend
		err     error
	)

	switch provider := strings.ToLower(strings.TrimSpace(c.Provider)); provider {
	case "openai", "ollama", "openrouter":
		backend, err = NewOpenAIClient(provider, c.APIKey, c.BaseURL, c.Model, c.Timeout)
	case "anthropic":
		backend, err = NewAnthropicClient(c.APIKey, c.BaseURL, c.Model, c.Timeout)
	case "gemini":
		backend, err = NewGeminiClient(ctx, c.APIKey, c.BaseURL, c.Model, c.Timeout)
	case "mock":
		backend = NewMockClient()
	default:
		return nil, fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if err != nil {
		return nil, err
	}

	log.Info("LLM client initialized",
		zap.String("provider", backend.Provider()),
		zap.String("model", backend.ModelID()),
	)
	return WithLogging(backend, log), nil
}
