package core

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies pipeline failures
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindMissingField       Kind = "missing_field"
	KindInvalidRecipients  Kind = "invalid_recipients"
	KindUpstreamFailure    Kind = "upstream_failure"
	KindTransportFailure   Kind = "transport_failure"
	KindServiceUnavailable Kind = "service_unavailable"
)

var (
	// ErrInvalidInput matches every failure caused by caller-supplied data
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream matches generation collaborator failures
	ErrUpstream = errors.New("generation service failed")
	// ErrTransport matches mail transport failures
	ErrTransport = errors.New("mail transport failed")
	// ErrServiceUnavailable matches calls to a collaborator that failed its startup check
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrNoRecipients is returned when a recipient string holds no addresses
	ErrNoRecipients = errors.New("no recipients provided")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindInvalidInput, KindMissingField, KindInvalidRecipients:
		return ErrInvalidInput
	case KindUpstreamFailure:
		return ErrUpstream
	case KindTransportFailure:
		return ErrTransport
	case KindServiceUnavailable:
		return ErrServiceUnavailable
	}
	return nil
}

// ValidationError reports every recipient segment that failed the syntax check,
// or an empty recipient string
type ValidationError struct {
	Empty   bool
	Invalid []string
}

func (e *ValidationError) Error() string {
	if e.Empty {
		return ErrNoRecipients.Error()
	}
	return fmt.Sprintf("invalid email address(es): %s", strings.Join(e.Invalid, ", "))
}

// Is lets errors.Is match ErrNoRecipients and ErrInvalidInput
func (e *ValidationError) Is(target error) bool {
	if target == ErrInvalidInput {
		return true
	}
	return e.Empty && target == ErrNoRecipients
}

// GenerationError is returned by GenerationService.Generate
type GenerationError struct {
	Kind Kind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("generate: %s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

// DeliveryError is returned by DeliveryService.Send. Fields lists blank inputs
// for KindMissingField, Addresses lists rejected recipients for KindInvalidRecipients.
type DeliveryError struct {
	Kind      Kind
	Fields    []string
	Addresses []string
	Err       error
}

func (e *DeliveryError) Error() string {
	switch {
	case len(e.Fields) > 0:
		return fmt.Sprintf("send: %s: %s", e.Kind, strings.Join(e.Fields, ", "))
	case e.Err != nil:
		return fmt.Sprintf("send: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("send: %s", e.Kind)
	}
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

var (
	errPromptRequired         = errors.New("prompt is required")
	errLLMNotConfigured       = errors.New("generation service is not configured")
	errTransportNotConfigured = errors.New("mail transport is not configured")
	errDomainNotAllowed       = errors.New("recipient domain is not allowed")
)
