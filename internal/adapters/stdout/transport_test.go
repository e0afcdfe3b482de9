package stdout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/utils"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed pipe")
}

func TestTransport_Send(t *testing.T) {
	obsCore, logs := observer.New(zap.InfoLevel)
	logger := zap.New(obsCore)

	var buf bytes.Buffer
	transport := NewWithWriter(&buf, utils.NewTextProcessor(logger), logger)

	body := strings.Repeat("long body ", 30)
	id, err := transport.Send(context.Background(), testMessage(body))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "stdout", transport.Name())

	out := buf.String()
	assert.Contains(t, out, "Message-ID: "+id)
	assert.Contains(t, out, "To: a@example.com, b@example.com")
	assert.Contains(t, out, "Subject: Dry run")
	assert.Contains(t, out, body)

	entries := logs.FilterMessage("Message printed instead of delivered").All()
	require.Len(t, entries, 1)
	preview := entries[0].ContextMap()["preview"].(string)
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.Len(t, preview, previewSize+3)
}

func TestTransport_SendUniqueIDs(t *testing.T) {
	var buf bytes.Buffer
	transport := NewWithWriter(&buf, utils.NewTextProcessor(zap.NewNop()), zap.NewNop())

	first, err := transport.Send(context.Background(), testMessage("one"))
	require.NoError(t, err)
	second, err := transport.Send(context.Background(), testMessage("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTransport_SendWriteError(t *testing.T) {
	transport := NewWithWriter(failingWriter{}, utils.NewTextProcessor(zap.NewNop()), zap.NewNop())

	_, err := transport.Send(context.Background(), testMessage("body"))
	require.Error(t, err)
}

func testMessage(body string) core.OutgoingMessage {
	return core.OutgoingMessage{
		From:    "sender@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Dry run",
		HTML:    body,
		Text:    body,
	}
}
