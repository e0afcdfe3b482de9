package factory

import (
	"github.com/mikey/llm-mail-composer/internal/adapters/httpapi"
	"github.com/mikey/llm-mail-composer/internal/config"
	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/metrics"
	"github.com/mikey/llm-mail-composer/internal/ports"
	"go.uber.org/zap"
)

// ServerFactory creates the HTTP surface that exposes the pipelines
type ServerFactory struct {
	cfg        *config.Config
	generation *core.GenerationService
	delivery   *core.DeliveryService
	policy     core.DomainPolicy
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewServerFactory creates a new server factory
func NewServerFactory(
	cfg *config.Config,
	generation *core.GenerationService,
	delivery *core.DeliveryService,
	policy core.DomainPolicy,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *ServerFactory {
	return &ServerFactory{
		cfg:        cfg,
		generation: generation,
		delivery:   delivery,
		policy:     policy,
		metrics:    metrics,
		logger:     logger,
	}
}

// CreateServer creates the HTTP API server
func (f *ServerFactory) CreateServer() (ports.Server, error) {
	serverConfig, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}

	handler := httpapi.NewHandler(f.generation, f.delivery, f.policy, f.logger)
	router := httpapi.NewRouter(handler, f.metrics, f.metrics.Handler(), f.logger)

	return httpapi.NewServer(serverConfig, router, f.logger), nil
}
