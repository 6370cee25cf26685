package llm

import "context"

// Generator sends a single prompt to a hosted model and returns its raw reply.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Reply, error)
	Close() error
}

// GenerateOptions are optional generation parameters; zero values mean provider defaults.
type GenerateOptions struct {
	MaxOutputTokens int32
	Temperature     *float32
}

// Temperature returns a pointer for GenerateOptions.Temperature.
func Temperature(t float32) *float32 {
	return &t
}

// Reply is the loosely shaped answer document returned by a provider.
// Providers fill whichever fields their API exposes.
type Reply struct {
	Text       *string // flat text field, nil when the provider has none
	Candidates []Candidate
	Model      string
}

type Candidate struct {
	Content      *Content
	FinishReason string
}

type Content struct {
	Role  string
	Parts []Part
}

// Part is one piece of candidate content. Non-text parts have a nil Text.
type Part struct {
	Text     *string
	MIMEType string
}

// TextPart is a convenience constructor for a text Part.
func TextPart(s string) Part {
	return Part{Text: &s}
}
