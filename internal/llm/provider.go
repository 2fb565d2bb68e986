package llm

import "context"

// Provider is the core abstraction for LLM interaction.
// All tutoring, quiz, and remediation prompts flow through it.
type Provider interface {
	// Generate sends the conversation to the LLM and returns the
	// assistant's reply as plain text. Structured responses (such as
	// quiz JSON) are requested through prompting and parsed by the
	// caller.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the tutor persona and constraints.
	System string

	// Messages is the conversation history in chronological order.
	// Roles are user and assistant; the system instruction travels in
	// the System field.
	Messages []Message

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Nil means "use the provider default"; an explicit zero is sent
	// to the provider and requests maximal determinism.
	Temperature *float64

	// MaxTokens caps the response length. Zero means no explicit cap.
	MaxTokens int
}

// Float returns a pointer to v, for optional request fields such as
// Temperature.
func Float(v float64) *float64 { return &v }

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the LLM's output.
type Response struct {
	// Content is the generated text.
	Content string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
