package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/llm-mail-composer/internal/core"
)

const (
	msgPromptRequired     = "Prompt is required"
	msgFieldsRequired     = "Recipients, subject, and email body are required"
	msgInvalidRecipients  = "Invalid email addresses"
	msgInvalidJSON        = "Invalid JSON body"
	msgGenerationFailed   = "Failed to generate email"
	msgDeliveryFailed     = "Failed to send email"
	msgGenerationDisabled = "Email generation is not configured"
	msgDeliveryDisabled   = "Email delivery is not configured"
	msgNotFound           = "Route not found"
	msgMethodNotAllowed   = "Method not allowed"
	msgInternal           = "Internal server error"
)

type errorResponse struct {
	Error             string   `json:"error"`
	Details           string   `json:"details,omitempty"`
	InvalidRecipients []string `json:"invalidRecipients,omitempty"`
}

type healthResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message"`
	Services healthServices `json:"services"`
}

type healthServices struct {
	LLM  bool `json:"llm"`
	Mail bool `json:"mail"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Success     bool   `json:"success"`
	Subject     string `json:"subject"`
	EmailBody   string `json:"emailBody"`
	FullContent string `json:"fullContent"`
}

type sendRequest struct {
	Recipients string `json:"recipients"`
	Subject    string `json:"subject"`
	EmailBody  string `json:"emailBody"`
}

type sendResponse struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	MessageID  string   `json:"messageId"`
	Recipients []string `json:"recipients"`
}

type validateRequest struct {
	Recipients string `json:"recipients"`
}

type validateResponse struct {
	Valid      bool     `json:"valid"`
	Recipients []string `json:"recipients"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	writeJSON(w, status, resp)
}

// writeGenerationError maps a generation failure onto a status and message.
// Collaborator diagnostics are passed through as details only for upstream errors.
func (h *Handler) writeGenerationError(w http.ResponseWriter, err error) {
	var genErr *core.GenerationError
	if !errors.As(err, &genErr) {
		h.logger.Error("Unexpected generation error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
		return
	}

	switch {
	case errors.Is(err, core.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, errorResponse{Error: msgPromptRequired})
	case errors.Is(err, core.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, errorResponse{Error: msgGenerationDisabled})
	default:
		writeError(w, http.StatusBadGateway, errorResponse{
			Error:   msgGenerationFailed,
			Details: causeOf(genErr.Err),
		})
	}
}

func (h *Handler) writeDeliveryError(w http.ResponseWriter, err error) {
	var delErr *core.DeliveryError
	if !errors.As(err, &delErr) {
		h.logger.Error("Unexpected delivery error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
		return
	}

	switch delErr.Kind {
	case core.KindMissingField:
		writeError(w, http.StatusBadRequest, errorResponse{
			Error:   msgFieldsRequired,
			Details: "missing: " + strings.Join(delErr.Fields, ", "),
		})
	case core.KindInvalidRecipients:
		writeRecipientError(w, delErr.Err, delErr.Addresses)
	case core.KindServiceUnavailable:
		writeError(w, http.StatusServiceUnavailable, errorResponse{Error: msgDeliveryDisabled})
	default:
		writeError(w, http.StatusBadGateway, errorResponse{
			Error:   msgDeliveryFailed,
			Details: causeOf(delErr.Err),
		})
	}
}

func writeRecipientError(w http.ResponseWriter, cause error, addresses []string) {
	writeError(w, http.StatusBadRequest, errorResponse{
		Error:             msgInvalidRecipients,
		Details:           causeOf(cause),
		InvalidRecipients: addresses,
	})
}

func causeOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
