// Package llm provides the text-generation capability used by the
// content transformer.
package llm

import (
	"context"
)

// Generator produces free-form text from a prompt. Implementations make
// a single attempt; retrying is the caller's decision.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
