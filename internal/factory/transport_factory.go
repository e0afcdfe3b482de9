package factory

import (
	"context"
	"fmt"

	"github.com/mikey/llm-mail-composer/internal/adapters/resend"
	"github.com/mikey/llm-mail-composer/internal/adapters/ses"
	"github.com/mikey/llm-mail-composer/internal/adapters/smtp"
	"github.com/mikey/llm-mail-composer/internal/adapters/stdout"
	"github.com/mikey/llm-mail-composer/internal/config"
	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/utils"
	"go.uber.org/zap"
)

// TransportFactory creates the mail transport collaborator
type TransportFactory struct {
	cfg           *config.Config
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewTransportFactory creates a new transport factory
func NewTransportFactory(cfg *config.Config, textProcessor *utils.TextProcessor, logger *zap.Logger) *TransportFactory {
	return &TransportFactory{
		cfg:           cfg,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// CreateTransport creates the transport named by mail.transport. A nil
// transport with a nil error means required settings are missing and delivery
// is disabled; an unknown transport name is an error.
func (f *TransportFactory) CreateTransport(ctx context.Context) (core.MailTransport, error) {
	mailConfig := f.cfg.GetMail()

	switch mailConfig.Transport {
	case "smtp":
		smtpConfig, err := f.cfg.GetSMTP()
		if err != nil {
			return nil, err
		}
		if smtpConfig.Host == "" || mailConfig.From == "" {
			return f.disabled("smtp", "mail.smtp.host and mail.from are required")
		}
		if smtpConfig.Username != "" && smtpConfig.Password == "" {
			return f.disabled("smtp", "mail.smtp.password is required when a username is set")
		}
		f.logger.Info("Mail transport configured",
			zap.String("transport", "smtp"),
			zap.String("host", smtpConfig.Host),
			zap.Int("port", smtpConfig.Port))
		return smtp.NewTransport(smtpConfig, mailConfig.FromName, f.logger), nil

	case "ses":
		if mailConfig.From == "" {
			return f.disabled("ses", "mail.from is required")
		}
		transport, err := ses.New(ctx, f.cfg.GetSES(), mailConfig.FromName, f.logger)
		if err != nil {
			return nil, err
		}
		f.logger.Info("Mail transport configured",
			zap.String("transport", "ses"),
			zap.String("region", f.cfg.GetSES().Region))
		return transport, nil

	case "resend":
		resendConfig := f.cfg.GetResend()
		if resendConfig.APIKey == "" || mailConfig.From == "" {
			return f.disabled("resend", "mail.resend.api_key and mail.from are required")
		}
		f.logger.Info("Mail transport configured", zap.String("transport", "resend"))
		return resend.New(resendConfig, mailConfig.FromName, f.logger), nil

	case "stdout":
		f.logger.Info("Mail transport configured", zap.String("transport", "stdout"))
		return stdout.New(f.textProcessor, f.logger), nil

	default:
		return nil, fmt.Errorf("unsupported mail transport: %s", mailConfig.Transport)
	}
}

func (f *TransportFactory) disabled(name, reason string) (core.MailTransport, error) {
	f.logger.Warn("Mail transport not configured; delivery is disabled",
		zap.String("transport", name),
		zap.String("reason", reason))
	return nil, nil
}
