package core

import (
	"context"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BodyRenderer converts an edited plain-text body into transport HTML
type BodyRenderer interface {
	BodyToHTML(body string) string
}

// escapingRenderer escapes the body and turns line breaks into <br>
type escapingRenderer struct{}

func (escapingRenderer) BodyToHTML(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
}

// DomainPolicy restricts which recipient domains may be mailed
type DomainPolicy interface {
	// Rejected returns the addresses that are not allowed, in input order
	Rejected(addrs []string) []string
}

// DeliveryService validates a send request and hands it to the mail transport
type DeliveryService struct {
	transport MailTransport
	renderer  BodyRenderer
	policy    DomainPolicy
	from      string
	recorder  Recorder
	logger    *zap.Logger
}

// NewDeliveryService creates a new delivery service. A nil transport marks the
// collaborator as unavailable; a nil policy allows every domain and a nil
// renderer falls back to escaped text with <br> line breaks.
func NewDeliveryService(
	transport MailTransport,
	renderer BodyRenderer,
	policy DomainPolicy,
	from string,
	recorder Recorder,
	logger *zap.Logger,
) *DeliveryService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if renderer == nil {
		renderer = escapingRenderer{}
	}
	return &DeliveryService{
		transport: transport,
		renderer:  renderer,
		policy:    policy,
		from:      from,
		recorder:  recorder,
		logger:    logger,
	}
}

// Available reports whether the transport collaborator passed its startup check
func (s *DeliveryService) Available() bool {
	return s.transport != nil
}

// TransportName returns the configured transport name, or "" when unavailable
func (s *DeliveryService) TransportName() string {
	if s.transport == nil {
		return ""
	}
	return s.transport.Name()
}

// Send validates req and dispatches it. Recipients are always re-validated here,
// whatever the caller checked before.
func (s *DeliveryService) Send(ctx context.Context, req SendRequest) (*DeliveryReceipt, error) {
	if missing := missingFields(req); len(missing) > 0 {
		s.recorder.DeliveryFinished(string(KindMissingField), 0)
		return nil, &DeliveryError{Kind: KindMissingField, Fields: missing}
	}

	recipients, err := ParseRecipients(req.Recipients)
	if err != nil {
		s.recorder.DeliveryFinished(string(KindInvalidRecipients), 0)
		derr := &DeliveryError{Kind: KindInvalidRecipients, Err: err}
		if verr, ok := err.(*ValidationError); ok {
			derr.Addresses = verr.Invalid
		}
		return nil, derr
	}

	if s.policy != nil {
		if rejected := s.policy.Rejected(recipients); len(rejected) > 0 {
			s.logger.Warn("Recipients outside allowed domains", zap.Strings("rejected", rejected))
			s.recorder.DeliveryFinished(string(KindInvalidRecipients), 0)
			return nil, &DeliveryError{
				Kind:      KindInvalidRecipients,
				Addresses: rejected,
				Err:       errDomainNotAllowed,
			}
		}
	}

	if !s.Available() {
		s.recorder.DeliveryFinished(string(KindServiceUnavailable), 0)
		return nil, &DeliveryError{Kind: KindServiceUnavailable, Err: errTransportNotConfigured}
	}

	msg := OutgoingMessage{
		From:    s.from,
		To:      recipients,
		Subject: strings.TrimSpace(req.Subject),
		HTML:    s.renderer.BodyToHTML(req.Body),
		Text:    req.Body,
	}

	s.logger.Info("Sending email",
		zap.Strings("recipients", recipients),
		zap.String("transport", s.transport.Name()))

	start := time.Now()
	messageID, err := s.transport.Send(ctx, msg)
	if err != nil {
		s.logger.Error("Mail transport failed",
			zap.Error(err),
			zap.String("transport", s.transport.Name()),
			zap.Duration("duration", time.Since(start)))
		s.recorder.DeliveryFinished(string(KindTransportFailure), len(recipients))
		return nil, &DeliveryError{Kind: KindTransportFailure, Err: err}
	}

	s.logger.Info("Email sent",
		zap.String("message_id", messageID),
		zap.Int("recipient_count", len(recipients)),
		zap.Duration("duration", time.Since(start)))
	s.recorder.DeliveryFinished("success", len(recipients))

	return &DeliveryReceipt{
		MessageID:  messageID,
		Recipients: recipients,
	}, nil
}

func missingFields(req SendRequest) []string {
	var missing []string
	if strings.TrimSpace(req.Recipients) == "" {
		missing = append(missing, "recipients")
	}
	if strings.TrimSpace(req.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(req.Body) == "" {
		missing = append(missing, "emailBody")
	}
	return missing
}
