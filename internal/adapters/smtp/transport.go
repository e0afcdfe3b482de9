package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/config"
	"github.com/mikey/llm-mail-composer/internal/core"
)

const implicitTLSPort = 465

// ErrStartTLSUnavailable is returned when credentials are configured but the
// relay does not offer STARTTLS on a plain connection
var ErrStartTLSUnavailable = errors.New("relay does not support STARTTLS, refusing to authenticate in clear text")

// Transport delivers mail through an authenticated SMTP relay
type Transport struct {
	cfg       config.SMTPConfig
	fromName  string
	tlsConfig *tls.Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewTransport creates a new SMTP relay transport
func NewTransport(cfg config.SMTPConfig, fromName string, logger *zap.Logger) *Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Transport{
		cfg:       cfg,
		fromName:  fromName,
		tlsConfig: &tls.Config{ServerName: cfg.Host},
		logger:    logger,
		now:       time.Now,
	}
}

// Name returns the transport name
func (t *Transport) Name() string {
	return "smtp"
}

// Send delivers msg over a fresh connection and returns its Message-ID. Every
// recipient must be accepted by the relay or nothing is sent.
func (t *Transport) Send(ctx context.Context, msg core.OutgoingMessage) (string, error) {
	c, err := t.connect(ctx)
	if err != nil {
		return "", err
	}
	defer c.Close()

	if t.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", t.cfg.Username, t.cfg.Password)); err != nil {
			return "", fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(msg.From, nil); err != nil {
		return "", fmt.Errorf("MAIL FROM failed: %w", err)
	}

	for _, recipient := range msg.To {
		if err := c.Rcpt(recipient, nil); err != nil {
			t.logger.Warn("RCPT TO rejected",
				zap.String("recipient", recipient),
				zap.Error(err))
			return "", fmt.Errorf("RCPT TO %s failed: %w", recipient, err)
		}
	}

	messageID := newMessageID(msg.From)
	data, err := buildMessage(msg, t.fromName, messageID, t.now())
	if err != nil {
		return "", err
	}

	wc, err := c.Data()
	if err != nil {
		return "", fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to write message data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to complete DATA: %w", err)
	}

	if err := c.Quit(); err != nil {
		t.logger.Debug("QUIT failed after successful delivery", zap.Error(err))
	}

	t.logger.Debug("Message accepted by relay",
		zap.String("relay", t.address()),
		zap.String("message_id", messageID),
		zap.Int("size", len(data)))

	return messageID, nil
}

func (t *Transport) address() string {
	return net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
}

func (t *Transport) helo() string {
	if t.cfg.Helo != "" {
		return t.cfg.Helo
	}
	hostname, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return hostname
}

func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: t.cfg.Timeout}

	if t.cfg.Port == implicitTLSPort {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: t.tlsConfig}
		conn, err := tlsDialer.DialContext(ctx, "tcp", t.address())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to relay over TLS: %w", err)
		}
		return conn, nil
	}

	conn, err := dialer.DialContext(ctx, "tcp", t.address())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay: %w", err)
	}
	return conn, nil
}

func (t *Transport) open(ctx context.Context) (net.Conn, error) {
	conn, err := t.dial(ctx)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(t.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set connection deadline: %w", err)
	}
	return conn, nil
}

// connect returns a client that has completed EHLO, upgrading the session
// with STARTTLS when configured on a non implicit TLS port
func (t *Transport) connect(ctx context.Context) (*gosmtp.Client, error) {
	if t.cfg.Port == implicitTLSPort || !t.cfg.StartTLS {
		return t.connectPlain(ctx)
	}

	conn, err := t.open(ctx)
	if err != nil {
		return nil, err
	}

	c, err := gosmtp.NewClientStartTLS(conn, t.tlsConfig)
	if err != nil {
		if !isStartTLSUnsupported(err) {
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
		if t.cfg.Username != "" {
			return nil, ErrStartTLSUnavailable
		}
		t.logger.Warn("Relay does not offer STARTTLS, sending in clear text",
			zap.String("relay", t.address()))
		return t.connectPlain(ctx)
	}
	t.tune(c)

	// The pre-upgrade EHLO is sent as localhost; the TLS session gets the
	// configured name.
	if err := c.Hello(t.helo()); err != nil {
		c.Close()
		return nil, fmt.Errorf("EHLO failed: %w", err)
	}
	return c, nil
}

func (t *Transport) connectPlain(ctx context.Context) (*gosmtp.Client, error) {
	conn, err := t.open(ctx)
	if err != nil {
		return nil, err
	}

	c := gosmtp.NewClient(conn)
	t.tune(c)
	if err := c.Hello(t.helo()); err != nil {
		c.Close()
		return nil, fmt.Errorf("EHLO failed: %w", err)
	}
	return c, nil
}

func (t *Transport) tune(c *gosmtp.Client) {
	c.CommandTimeout = t.cfg.Timeout
	c.SubmissionTimeout = t.cfg.Timeout
}

// go-smtp reports a missing STARTTLS extension as a plain error, not an
// SMTPError
func isStartTLSUnsupported(err error) bool {
	var smtpErr *gosmtp.SMTPError
	if errors.As(err, &smtpErr) {
		return false
	}
	return strings.Contains(err.Error(), "doesn't support STARTTLS")
}
