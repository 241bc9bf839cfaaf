// Package model defines the minimal language-model surface the persistence
// flow consumes: a single-shot answer for a query. Provider adapters live in
// subpackages and wrap the official SDKs; swap them freely behind the Model
// interface.
package model

import "context"

// Request captures the normalized model input.
type Request struct {
	// Instruction is an optional system prompt.
	Instruction string
	// Prompt is the user query to answer.
	Prompt string
}

// Model is implemented by provider adapters. Generate returns the final
// answer text; partial/streaming output is out of scope for this layer.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}
