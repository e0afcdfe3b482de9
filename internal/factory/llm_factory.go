package factory

import (
	"github.com/mikey/llm-mail-composer/internal/adapters/openai"
	"github.com/mikey/llm-mail-composer/internal/config"
	"github.com/mikey/llm-mail-composer/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates the generation collaborator
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates the chat-completion client. A nil client with a nil
// error means the collaborator is not configured and generation is disabled.
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}

	client := openai.NewFactory(llmConfig, f.logger).CreateClient()
	if client == nil {
		return nil, nil
	}
	return client, nil
}

// CreatePromptBuilder creates the prompt builder for the configured model
func (f *LLMFactory) CreatePromptBuilder() (*core.PromptBuilder, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return nil, err
	}
	return core.NewPromptBuilder(llmConfig.Model, llmConfig.Temperature, llmConfig.MaxTokens), nil
}
