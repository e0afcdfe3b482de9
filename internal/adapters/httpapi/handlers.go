package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/core"
)

const maxBodyBytes = 1 << 20

// Generator drafts emails from prompts
type Generator interface {
	Generate(ctx context.Context, prompt string) (*core.Draft, error)
	Available() bool
}

// Sender delivers reviewed drafts
type Sender interface {
	Send(ctx context.Context, req core.SendRequest) (*core.DeliveryReceipt, error)
	Available() bool
}

// Handler serves the composer API
type Handler struct {
	generator Generator
	sender    Sender
	policy    core.DomainPolicy
	logger    *zap.Logger
}

// NewHandler creates a new API handler. policy may be nil.
func NewHandler(generator Generator, sender Sender, policy core.DomainPolicy, logger *zap.Logger) *Handler {
	return &Handler{
		generator: generator,
		sender:    sender,
		policy:    policy,
		logger:    logger,
	}
}

// Health reports liveness and which collaborators passed their startup check
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "OK",
		Message: "Server is running",
		Services: healthServices{
			LLM:  h.generator.Available(),
			Mail: h.sender.Available(),
		},
	})
}

// GenerateEmail drafts an email from {prompt}
func (h *Handler) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}

	draft, err := h.generator.Generate(r.Context(), req.Prompt)
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		Subject:     draft.Subject,
		EmailBody:   draft.Body,
		FullContent: draft.RawContent,
	})
}

// SendEmail delivers a reviewed draft from {recipients, subject, emailBody}
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !h.decode(w, r, &req) {
		return
	}

	receipt, err := h.sender.Send(r.Context(), core.SendRequest{
		Recipients: req.Recipients,
		Subject:    req.Subject,
		Body:       req.EmailBody,
	})
	if err != nil {
		h.writeDeliveryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sendResponse{
		Success:    true,
		Message:    "Email sent successfully",
		MessageID:  receipt.MessageID,
		Recipients: receipt.Recipients,
	})
}

// ValidateRecipients checks a recipient string without sending anything
func (h *Handler) ValidateRecipients(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !h.decode(w, r, &req) {
		return
	}

	recipients, err := core.ParseRecipients(req.Recipients)
	if err != nil {
		var verr *core.ValidationError
		var invalid []string
		if errors.As(err, &verr) {
			invalid = verr.Invalid
		}
		writeRecipientError(w, err, invalid)
		return
	}

	if h.policy != nil {
		if rejected := h.policy.Rejected(recipients); len(rejected) > 0 {
			writeRecipientError(w, errors.New("recipient domain is not allowed"), rejected)
			return
		}
	}

	writeJSON(w, http.StatusOK, validateResponse{
		Valid:      true,
		Recipients: recipients,
	})
}

// NotFound answers unknown routes
func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, errorResponse{Error: msgNotFound})
}

// MethodNotAllowed answers known routes called with the wrong method
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.logger.Debug("Rejected request body", zap.Error(err), zap.String("path", r.URL.Path))

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error:   msgInvalidJSON,
				Details: "request body too large",
			})
			return false
		}

		writeError(w, http.StatusBadRequest, errorResponse{
			Error:   msgInvalidJSON,
			Details: err.Error(),
		})
		return false
	}

	return true
}
