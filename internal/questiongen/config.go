package questiongen

import "fmt"

// Mode selects how the model is asked to format its output.
type Mode string

const (
	// ModeText asks for plain Q:/A)/Answer: blocks.
	ModeText Mode = "text"
	// ModeJSON asks for schema-constrained JSON.
	ModeJSON Mode = "json"
)

// Config holds question generation settings.
type Config struct {
	Mode Mode

	// DefaultQuestions is used when the caller asks for zero or fewer.
	DefaultQuestions int

	// MaxQuestions caps a single request.
	MaxQuestions int

	// MaxTokens per LLM call.
	MaxTokens int

	// Temperature for the LLM call.
	Temperature float64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeText,
		DefaultQuestions: 5,
		MaxQuestions:     20,
		MaxTokens:        4096,
		Temperature:      0.7,
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeText, ModeJSON:
	default:
		return fmt.Errorf("unknown generation mode %q", c.Mode)
	}
	if c.DefaultQuestions <= 0 {
		return fmt.Errorf("default question count must be positive")
	}
	if c.MaxQuestions < c.DefaultQuestions {
		return fmt.Errorf("max questions (%d) below default (%d)", c.MaxQuestions, c.DefaultQuestions)
	}
	return nil
}
