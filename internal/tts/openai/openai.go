// Package openai implements the tts.Synthesizer interface using OpenAI's
// speech API (gpt-4o-mini-tts).
//
// The speaking style is driven by a "speech mode" (child, adult, or
// senior) which maps to a natural-language instruction telling the model
// how to deliver the text. Senior mode (slow, loud, friendly) is the
// default for the ordering kiosk.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mokabrew/baristad/internal/config"
	"github.com/mokabrew/baristad/internal/tts"
)

const speechURL = "https://api.openai.com/v1/audio/speech"

// Synthesizer talks to the OpenAI speech API.
type Synthesizer struct {
	apiKey     string
	model      string
	voice      string
	speechMode string
	client     *http.Client
}

// New creates a new OpenAI synthesizer from config.
func New(cfg config.OpenAITTSConfig) *Synthesizer {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini-tts"
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "ballad"
	}
	return &Synthesizer{
		apiKey:     cfg.APIKey,
		model:      model,
		voice:      voice,
		speechMode: cfg.SpeechMode,
		client:     &http.Client{},
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "openai" }

// Synthesize sends text to the speech API and returns MP3 audio.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*tts.Result, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	reqBody := map[string]any{
		"model":           s.model,
		"voice":           s.voice,
		"input":           text,
		"instructions":    modeInstructions(s.speechMode),
		"response_format": "mp3",
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshalling speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, speechURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating speech request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("speech failed (status %d): %s", resp.StatusCode, respBody)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading speech audio: %w", err)
	}

	slog.Debug("speech synthesis complete", "audio_bytes", len(audio), "voice", s.voice)
	return &tts.Result{Audio: audio, ContentType: "audio/mpeg"}, nil
}

// Close is a no-op for the OpenAI synthesizer.
func (s *Synthesizer) Close() error { return nil }

// modeInstructions maps a speech mode to delivery instructions for the model.
func modeInstructions(mode string) string {
	switch mode {
	case "child":
		return "Speak the following text in a very high tone and a bit slowly with easier intonation and extra friendly style, in English."
	case "adult":
		return "Speak the following text in a normal and clear voice, in English."
	case "senior":
		return "Speak the following text quite a bit slowed down, more loud and clear, with easier intonation, nice, kind, and friendly, in English."
	default:
		return "Speak the following text clearly, in English."
	}
}
