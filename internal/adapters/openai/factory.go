package openai

import (
	"github.com/mikey/llm-mail-composer/internal/config"
	"go.uber.org/zap"
)

// Factory creates new instances of Client
type Factory struct {
	cfg    config.LLMConfig
	logger *zap.Logger
}

// NewFactory creates a new factory for Client instances
func NewFactory(cfg config.LLMConfig, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateClient creates a new Client. It returns nil when no API key is
// configured so callers can report the collaborator as unavailable.
func (f *Factory) CreateClient() *Client {
	if f.cfg.APIKey == "" {
		f.logger.Warn("LLM API key not configured; generation is disabled")
		return nil
	}

	f.logger.Info("Generation service configured",
		zap.String("base_url", f.cfg.BaseURL),
		zap.String("model", f.cfg.Model))

	return NewClient(f.cfg.APIKey, f.cfg.BaseURL, f.cfg.Timeout, f.logger)
}
