// Package llm wraps the hosted model APIs behind a single Provider
// interface used for quiz generation.
package llm

import "context"

// Provider sends one prompt to a hosted model and returns its text.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the provider asks for schema-constrained JSON and validates the
	// result before returning it. Failures are *ProviderError.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the provider family, e.g. "gemini".
	Name() string

	// ModelID returns the model identifier requests are sent to.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, switches the call to structured JSON output.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema the response must conform to.
type Schema struct {
	// Name is a kebab-case identifier, also used as the cache key for the
	// compiled schema.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output. Text holds the raw completion; for a
// schema request it is the validated JSON document.
type Response struct {
	Text  string
	Usage Usage
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
