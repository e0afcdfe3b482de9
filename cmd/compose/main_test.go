package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/di"
	"github.com/mikey/llm-mail-composer/internal/utils"
)

type fakeLLM struct {
	calls int
}

func (f *fakeLLM) Complete(context.Context, core.GenerationRequest) (string, error) {
	f.calls++
	return "SUBJECT: Offsite reminder\n\nEMAIL:\nDon't forget the offsite on Monday.", nil
}

type fakeTransport struct {
	sent []core.OutgoingMessage
}

func (f *fakeTransport) Send(_ context.Context, msg core.OutgoingMessage) (string, error) {
	f.sent = append(f.sent, msg)
	return "id-42", nil
}

func (f *fakeTransport) Name() string { return "fake" }

func newServices(llm core.LLMClient, transport core.MailTransport) (*core.GenerationService, *core.DeliveryService) {
	logger := zap.NewNop()
	return core.NewGenerationService(llm, nil, nil, logger),
		core.NewDeliveryService(transport, utils.NewTextProcessor(logger), nil, "me@example.com", nil, logger)
}

func TestCompose_PrintOnly(t *testing.T) {
	llm := &fakeLLM{}
	transport := &fakeTransport{}
	generation, delivery := newServices(llm, transport)

	var out bytes.Buffer
	err := compose(context.Background(), &di.CLIFlags{}, strings.NewReader("remind the team"), &out, generation, delivery)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Subject: Offsite reminder")
	assert.Contains(t, out.String(), "Don't forget the offsite on Monday.")
	assert.Equal(t, 1, llm.calls)
	assert.Empty(t, transport.sent)
}

func TestCompose_Send(t *testing.T) {
	transport := &fakeTransport{}
	generation, delivery := newServices(&fakeLLM{}, transport)

	var out bytes.Buffer
	flags := &di.CLIFlags{To: "a@b.com, c@d.org"}
	err := compose(context.Background(), flags, strings.NewReader("remind the team"), &out, generation, delivery)
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	assert.Equal(t, []string{"a@b.com", "c@d.org"}, transport.sent[0].To)
	assert.Equal(t, "Offsite reminder", transport.sent[0].Subject)
	assert.Contains(t, out.String(), "Message ID: id-42")
}

func TestCompose_InvalidRecipientsSkipGeneration(t *testing.T) {
	llm := &fakeLLM{}
	generation, delivery := newServices(llm, &fakeTransport{})

	var out bytes.Buffer
	flags := &di.CLIFlags{To: "a@b.com, nope"}
	err := compose(context.Background(), flags, strings.NewReader("remind the team"), &out, generation, delivery)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
	assert.Equal(t, 0, llm.calls)
}

func TestCompose_BlankPrompt(t *testing.T) {
	llm := &fakeLLM{}
	generation, delivery := newServices(llm, &fakeTransport{})

	err := compose(context.Background(), &di.CLIFlags{}, strings.NewReader("  \n"), &bytes.Buffer{}, generation, delivery)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
	assert.Equal(t, 0, llm.calls)
}
