// Package tts defines the interface for text-to-speech synthesis.
//
// baristad speaks every assistant reply back to the customer. The voice and
// speaking style are fixed per deployment (configured once), so synthesis
// takes only the text. Two backends ship: OpenAI (cloud, MP3) and Piper
// (self-hosted Wyoming protocol, WAV).
package tts

import "context"

// Result holds the output of one synthesis call.
type Result struct {
	// Audio is the synthesized audio file bytes.
	Audio []byte

	// ContentType is the MIME type of Audio (e.g., "audio/mpeg", "audio/wav").
	ContentType string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "openai", "piper").
	Name() string

	// Synthesize generates spoken audio from the given text.
	Synthesize(ctx context.Context, text string) (*Result, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}
