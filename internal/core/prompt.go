package core

const (
	DefaultModel       = "llama3-8b-8192"
	DefaultTemperature = float32(0.7)
	DefaultMaxTokens   = 1000
)

// systemInstruction fixes the output grammar that ParseDraft relies on.
// Keep both in sync.
const systemInstruction = "You are a professional email writer. Generate well-structured, professional emails " +
	"based on the user's prompt. Include a clear subject line and properly formatted email content. " +
	"Respond in the following format:\n\n" +
	subjectLabel + " [subject line]\n\n" +
	bodyLabel + "\n[email content]"

// PromptBuilder assembles generation requests with fixed parameters
type PromptBuilder struct {
	model       string
	temperature float32
	maxTokens   int
}

// NewPromptBuilder creates a builder for the given model. Zero values fall back
// to the package defaults.
func NewPromptBuilder(model string, temperature float32, maxTokens int) *PromptBuilder {
	if model == "" {
		model = DefaultModel
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &PromptBuilder{
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Build returns the system instruction followed by the user prompt verbatim
func (b *PromptBuilder) Build(userPrompt string) GenerationRequest {
	return GenerationRequest{
		Model: b.model,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: systemInstruction},
			{Role: RoleUser, Content: userPrompt},
		},
		Temperature: b.temperature,
		MaxTokens:   b.maxTokens,
	}
}

// BuildPrompt builds a request with the default model and parameters
func BuildPrompt(userPrompt string) GenerationRequest {
	return NewPromptBuilder("", 0, 0).Build(userPrompt)
}
