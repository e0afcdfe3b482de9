package core

import (
	"context"
)

// LLMClient defines the interface for the generation collaborator
type LLMClient interface {
	// Complete sends the request and returns the raw completion text
	Complete(ctx context.Context, req GenerationRequest) (string, error)
}

// MailTransport defines the interface for the transport collaborator
type MailTransport interface {
	// Send dispatches the message and returns the transport-assigned message ID
	Send(ctx context.Context, msg OutgoingMessage) (string, error)

	// Name returns the transport name used in logs and health output
	Name() string
}

// Recorder receives pipeline outcomes for metrics
type Recorder interface {
	GenerationFinished(outcome string)
	DraftDegraded(field string)
	DeliveryFinished(outcome string, recipients int)
}

type nopRecorder struct{}

func (nopRecorder) GenerationFinished(string)    {}
func (nopRecorder) DraftDegraded(string)         {}
func (nopRecorder) DeliveryFinished(string, int) {}
