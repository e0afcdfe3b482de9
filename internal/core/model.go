package core

// ChatMessage roles understood by the generation collaborator
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is a single instruction sent to the generation collaborator
type ChatMessage struct {
	Role    string
	Content string
}

// GenerationRequest is the full payload handed to the generation collaborator
type GenerationRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float32
	MaxTokens   int
}

// ParseDegradation records which draft fields fell back to defaults
type ParseDegradation struct {
	SubjectFallback bool
	BodyFallback    bool
}

// Any reports whether the parser fell back for at least one field
func (d ParseDegradation) Any() bool {
	return d.SubjectFallback || d.BodyFallback
}

// Draft is the structured subject/body pair extracted from a model response.
// Subject and Body are never empty; RawContent is the unmodified model output.
type Draft struct {
	Subject    string
	Body       string
	RawContent string
	Degraded   ParseDegradation
}

// RecipientList is an ordered, validated, non-empty list of addresses
type RecipientList []string

// SendRequest is the caller-supplied input for one dispatch
type SendRequest struct {
	Recipients string
	Subject    string
	Body       string
}

// OutgoingMessage is the fully formed message handed to the mail transport
type OutgoingMessage struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// DeliveryReceipt is returned once the transport accepted a message
type DeliveryReceipt struct {
	MessageID  string
	Recipients RecipientList
}
