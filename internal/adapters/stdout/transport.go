package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/utils"
)

const previewSize = 120

// Transport prints messages instead of delivering them. It is meant for local
// development and dry runs.
type Transport struct {
	writer    io.Writer
	processor *utils.TextProcessor
	logger    *zap.Logger
}

// New creates a stdout transport writing to os.Stdout
func New(processor *utils.TextProcessor, logger *zap.Logger) *Transport {
	return NewWithWriter(os.Stdout, processor, logger)
}

// NewWithWriter creates a stdout transport writing to w
func NewWithWriter(w io.Writer, processor *utils.TextProcessor, logger *zap.Logger) *Transport {
	return &Transport{
		writer:    w,
		processor: processor,
		logger:    logger,
	}
}

// Name returns the transport name
func (t *Transport) Name() string {
	return "stdout"
}

// Send prints msg and returns a locally generated ID
func (t *Transport) Send(_ context.Context, msg core.OutgoingMessage) (string, error) {
	id := uuid.NewString()

	var b strings.Builder
	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "Message-ID: %s\n", id)
	fmt.Fprintf(&b, "From: %s\n", msg.From)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("Body:\n")
	b.WriteString(msg.Text + "\n")
	b.WriteString("========================================\n")

	if _, err := io.WriteString(t.writer, b.String()); err != nil {
		return "", fmt.Errorf("failed to write message: %w", err)
	}

	t.logger.Info("Message printed instead of delivered",
		zap.String("message_id", id),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("preview", t.processor.TruncateText(msg.Text, previewSize)))

	return id, nil
}
