package di

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/allowlist"
	"github.com/mikey/llm-mail-composer/internal/config"
	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/factory"
	"github.com/mikey/llm-mail-composer/internal/logging"
	"github.com/mikey/llm-mail-composer/internal/metrics"
	"github.com/mikey/llm-mail-composer/internal/ports"
	"github.com/mikey/llm-mail-composer/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(metrics.New); err != nil {
		return nil, err
	}
	if err := container.Provide(func(m *metrics.Metrics) core.Recorder {
		return m
	}); err != nil {
		return nil, err
	}

	if err := providePipelines(container); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ServerFactory) (ports.Server, error) {
		return f.CreateServer()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// providePipelines registers the collaborators and both pipeline services.
// The container must already provide config, logger and core.Recorder.
func providePipelines(container *dig.Container) error {
	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register recipient domain allowlist
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *allowlist.Checker {
		return allowlist.NewChecker(cfg.GetMail().AllowedDomains, logger)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(c *allowlist.Checker) core.DomainPolicy {
		return c
	}); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTransportFactory); err != nil {
		return err
	}

	// Register collaborators; nil values mean the collaborator is unavailable
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.LLMFactory) (*core.PromptBuilder, error) {
		return f.CreatePromptBuilder()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TransportFactory) (core.MailTransport, error) {
		return f.CreateTransport(context.Background())
	}); err != nil {
		return err
	}

	// Register services
	if err := container.Provide(core.NewGenerationService); err != nil {
		return err
	}
	if err := container.Provide(func(
		transport core.MailTransport,
		textProcessor *utils.TextProcessor,
		policy core.DomainPolicy,
		cfg *config.Config,
		recorder core.Recorder,
		logger *zap.Logger,
	) *core.DeliveryService {
		return core.NewDeliveryService(
			transport,
			textProcessor,
			policy,
			cfg.GetMail().From,
			recorder,
			logger,
		)
	}); err != nil {
		return err
	}

	return nil
}
