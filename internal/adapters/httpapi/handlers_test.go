package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/allowlist"
	"github.com/mikey/llm-mail-composer/internal/core"
	"github.com/mikey/llm-mail-composer/internal/metrics"
	"github.com/mikey/llm-mail-composer/internal/utils"
)

type stubLLM struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (s *stubLLM) Complete(_ context.Context, _ core.GenerationRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.response, s.err
}

type stubTransport struct {
	mu    sync.Mutex
	err   error
	calls int
	last  core.OutgoingMessage
}

func (s *stubTransport) Send(_ context.Context, msg core.OutgoingMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = msg
	if s.err != nil {
		return "", s.err
	}
	return "<msg-1@example.com>", nil
}

func (s *stubTransport) Name() string { return "stub" }

type panickingGenerator struct{}

func (panickingGenerator) Generate(context.Context, string) (*core.Draft, error) {
	panic("boom")
}

func (panickingGenerator) Available() bool { return true }

type testEnv struct {
	router    http.Handler
	llm       *stubLLM
	transport *stubTransport
}

type envOptions struct {
	noLLM       bool
	noTransport bool
	domains     []string
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	m := metrics.New(prometheus.NewRegistry())

	env := &testEnv{
		llm:       &stubLLM{response: "SUBJECT: Team lunch\nEMAIL: Hi all,\nLunch is on Friday."},
		transport: &stubTransport{},
	}

	var llm core.LLMClient = env.llm
	if opts.noLLM {
		llm = nil
	}
	var transport core.MailTransport = env.transport
	if opts.noTransport {
		transport = nil
	}

	policy := allowlist.NewChecker(opts.domains, logger)
	generation := core.NewGenerationService(llm, nil, m, logger)
	delivery := core.NewDeliveryService(transport, utils.NewTextProcessor(logger), policy, "sender@example.com", m, logger)

	handler := NewHandler(generation, delivery, policy, logger)
	env.router = NewRouter(handler, m, m.Handler(), logger)

	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Server is running", body["message"])
	assert.Equal(t, map[string]any{"llm": true, "mail": true}, body["services"])
}

func TestHealth_UnavailableCollaborators(t *testing.T) {
	env := newTestEnv(t, envOptions{noLLM: true, noTransport: true})

	rec, body := env.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, map[string]any{"llm": false, "mail": false}, body["services"])
}

func TestGenerateEmail(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodPost, "/api/generate-email", `{"prompt":"invite the team to lunch"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Team lunch", body["subject"])
	assert.Equal(t, "Hi all,\nLunch is on Friday.", body["emailBody"])
	assert.Equal(t, env.llm.response, body["fullContent"])
	assert.Equal(t, 1, env.llm.calls)
}

func TestGenerateEmail_FallbackDraft(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.llm.response = "Just some text without labels"

	rec, body := env.do(t, http.MethodPost, "/api/generate-email", `{"prompt":"anything"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.FallbackSubject, body["subject"])
	assert.Equal(t, "Just some text without labels", body["emailBody"])
}

func TestGenerateEmail_BlankPrompt(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodPost, "/api/generate-email", `{"prompt":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Prompt is required", body["error"])
	assert.Equal(t, 0, env.llm.calls)
}

func TestGenerateEmail_MalformedJSON(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodPost, "/api/generate-email", `{"prompt":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", body["error"])
	assert.Equal(t, 0, env.llm.calls)
}

func TestGenerateEmail_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	payload := `{"prompt":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec, _ := env.do(t, http.MethodPost, "/api/generate-email", payload)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, env.llm.calls)
}

func TestGenerateEmail_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.llm.err = errors.New("429 rate limited")

	rec, body := env.do(t, http.MethodPost, "/api/generate-email", `{"prompt":"hello"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to generate email", body["error"])
	assert.Equal(t, "429 rate limited", body["details"])
	assert.Equal(t, 1, env.llm.calls)
}

func TestGenerateEmail_Unavailable(t *testing.T) {
	env := newTestEnv(t, envOptions{noLLM: true})

	rec, body := env.do(t, http.MethodPost, "/api/generate-email", `{"prompt":"hello"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Email generation is not configured", body["error"])
}

func TestSendEmail(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodPost, "/api/send-email",
		`{"recipients":"a@b.com, c@d.org","subject":"Hi","emailBody":"Line one\nLine two"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Email sent successfully", body["message"])
	assert.Equal(t, "<msg-1@example.com>", body["messageId"])
	assert.Equal(t, []any{"a@b.com", "c@d.org"}, body["recipients"])

	require.Equal(t, 1, env.transport.calls)
	assert.Equal(t, "sender@example.com", env.transport.last.From)
	assert.Equal(t, []string{"a@b.com", "c@d.org"}, env.transport.last.To)
	assert.Equal(t, "Line one<br>Line two", env.transport.last.HTML)
}

func TestSendEmail_InvalidRecipients(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodPost, "/api/send-email",
		`{"recipients":"a@b.com, not-an-email","subject":"Hi","emailBody":"Body"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email addresses", body["error"])
	assert.Equal(t, []any{"not-an-email"}, body["invalidRecipients"])
	assert.Equal(t, 0, env.transport.calls)
}

func TestSendEmail_MissingFields(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodPost, "/api/send-email",
		`{"recipients":"a@b.com","subject":" ","emailBody":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Recipients, subject, and email body are required", body["error"])
	assert.Equal(t, "missing: subject, emailBody", body["details"])
	assert.Equal(t, 0, env.transport.calls)
}

func TestSendEmail_DomainNotAllowed(t *testing.T) {
	env := newTestEnv(t, envOptions{domains: []string{"b.com"}})

	rec, body := env.do(t, http.MethodPost, "/api/send-email",
		`{"recipients":"a@b.com, c@d.org","subject":"Hi","emailBody":"Body"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"c@d.org"}, body["invalidRecipients"])
	assert.Equal(t, 0, env.transport.calls)
}

func TestSendEmail_TransportFailure(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.transport.err = errors.New("535 authentication failed")

	rec, body := env.do(t, http.MethodPost, "/api/send-email",
		`{"recipients":"a@b.com","subject":"Hi","emailBody":"Body"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to send email", body["error"])
	assert.Equal(t, "535 authentication failed", body["details"])
	assert.Equal(t, 1, env.transport.calls)
}

func TestSendEmail_Unavailable(t *testing.T) {
	env := newTestEnv(t, envOptions{noTransport: true})

	rec, body := env.do(t, http.MethodPost, "/api/send-email",
		`{"recipients":"a@b.com","subject":"Hi","emailBody":"Body"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Email delivery is not configured", body["error"])
}

func TestValidateRecipients(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodPost, "/api/validate-recipients", `{"recipients":" a@b.com ,, c@d.org "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, []any{"a@b.com", "c@d.org"}, body["recipients"])

	rec, body = env.do(t, http.MethodPost, "/api/validate-recipients", `{"recipients":"bad, worse@"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"bad", "worse@"}, body["invalidRecipients"])

	rec, body = env.do(t, http.MethodPost, "/api/validate-recipients", `{"recipients":" , "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no recipients provided", body["details"])
	assert.Equal(t, 0, env.transport.calls)
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/unknown", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", body["error"])
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	rec, body := env.do(t, http.MethodGet, "/api/send-email", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", body["error"])
}

func TestPanicRecovered(t *testing.T) {
	logger := zap.NewNop()
	delivery := core.NewDeliveryService(nil, utils.NewTextProcessor(logger), nil, "", nil, logger)
	router := NewRouter(NewHandler(panickingGenerator{}, delivery, nil, logger), nil, nil, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-email", strings.NewReader(`{"prompt":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	env.do(t, http.MethodPost, "/api/generate-email", `{"prompt":"hello"}`)

	rec, _ := env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mail_composer_generations_total{outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), `route="/api/generate-email"`)
}
