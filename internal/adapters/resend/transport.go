package resend

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v3"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/config"
	"github.com/mikey/llm-mail-composer/internal/core"
)

// ErrMissingMessageID is returned when Resend accepts a message without an ID
var ErrMissingMessageID = errors.New("resend response carried no message ID")

// EmailSender is the subset of the Resend emails service used by Transport
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Transport delivers mail through the Resend HTTP API
type Transport struct {
	emails   EmailSender
	fromName string
	logger   *zap.Logger
}

// New creates a Resend transport from the configured API key
func New(cfg config.ResendConfig, fromName string, logger *zap.Logger) *Transport {
	return NewWithSender(resend.NewClient(cfg.APIKey).Emails, fromName, logger)
}

// NewWithSender creates a Resend transport around an existing emails service
func NewWithSender(emails EmailSender, fromName string, logger *zap.Logger) *Transport {
	return &Transport{
		emails:   emails,
		fromName: fromName,
		logger:   logger,
	}
}

// Name returns the transport name
func (t *Transport) Name() string {
	return "resend"
}

// Send submits msg to Resend and returns the assigned email ID
func (t *Transport) Send(ctx context.Context, msg core.OutgoingMessage) (string, error) {
	from := msg.From
	if t.fromName != "" {
		from = fmt.Sprintf("%s <%s>", t.fromName, msg.From)
	}

	resp, err := t.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("resend: failed to send email: %w", err)
	}

	if resp == nil || resp.Id == "" {
		return "", ErrMissingMessageID
	}

	t.logger.Debug("Message accepted by Resend", zap.String("message_id", resp.Id))

	return resp.Id, nil
}
