// Package llm holds the narrow completion contract the planner needs from a
// generative model, and its provider implementations.
package llm

import (
	"context"
	"errors"
)

// ErrNoCompletion is returned when the provider answered but produced no
// candidate at all.
var ErrNoCompletion = errors.New("no completion returned")

// Request is a single chat-style completion request.
type Request struct {
	Model       string
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	// JSON asks the provider for a JSON response where it supports that.
	JSON bool
}

// Usage tracks the tokens consumed by a request.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response contains the generated text and token usage.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Completer generates text for a prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Closer is implemented by clients holding connections.
type Closer interface {
	Close() error
}
