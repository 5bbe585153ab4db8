// Package llm defines the interface for the language-model backend driving
// the ordering dialogue.
//
// A client turns audio into text and conversation history into the next
// assistant reply. Both operations are blocking network round-trips with no
// client-side retry; callers decide how failures surface. baristad ships
// with two backends: OpenAI (cloud) and Local (self-hosted via
// Ollama/whisper.cpp).
package llm

import (
	"context"

	"github.com/mokabrew/baristad/internal/conversation"
)

// Client is the interface for transcription and chat completion.
type Client interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	// Transcribe converts audio bytes to text.
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)

	// Complete submits the full conversation history and returns the
	// model's next reply as plain text. The reply is non-deterministic.
	Complete(ctx context.Context, messages []conversation.Message) (string, error)

	// Close releases any resources held by the client.
	Close() error
}
