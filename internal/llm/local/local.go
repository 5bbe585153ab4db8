// Package local implements the llm.Client interface using self-hosted models.
//
// It supports any Whisper-compatible transcription endpoint (e.g., whisper.cpp
// server, faster-whisper) and any OpenAI-compatible chat endpoint (e.g., Ollama,
// vLLM, llama.cpp server).
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/mokabrew/baristad/internal/config"
	"github.com/mokabrew/baristad/internal/conversation"
)

// Client uses self-hosted models for transcription and chat completion.
type Client struct {
	whisperEndpoint string
	chatEndpoint    string
	chatModel       string
	language        string
	client          *http.Client
}

// New creates a new local client from config.
func New(cfg config.LocalLLMConfig) *Client {
	model := cfg.ChatModel
	if model == "" {
		model = "llama3"
	}
	return &Client{
		whisperEndpoint: cfg.WhisperEndpoint,
		chatEndpoint:    cfg.ChatEndpoint,
		chatModel:       model,
		language:        cfg.Language,
		client:          &http.Client{},
	}
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "local" }

// Transcribe sends audio to the local Whisper-compatible endpoint.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	ext := extFromContentType(contentType)
	part, err := writer.CreateFormFile("file", "audio"+ext)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(audio)); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}

	if c.language != "" {
		_ = writer.WriteField("language", c.language)
	}
	_ = writer.WriteField("response_format", "json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.whisperEndpoint, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding transcription: %w", err)
	}

	slog.Debug("local transcription complete", "text_length", len(result.Text))
	return result.Text, nil
}

// Complete sends the conversation history to the local chat endpoint.
// Supports Ollama's /api/chat and OpenAI-compatible /v1/chat/completions.
func (c *Client) Complete(ctx context.Context, messages []conversation.Message) (string, error) {
	reqBody := map[string]any{
		"model":    c.chatModel,
		"messages": toWireMessages(messages),
		"stream":   false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}

	content := extractContent(respData)
	if content == "" {
		return "", fmt.Errorf("empty response from local LLM")
	}

	reply := strings.TrimSpace(content)
	slog.Debug("local completion complete", "reply_length", len(reply))
	return reply, nil
}

// Close is a no-op for the local client.
func (c *Client) Close() error { return nil }

// --- Internal helpers ---

func toWireMessages(messages []conversation.Message) []map[string]string {
	out := make([]map[string]string, len(messages))
	for i, m := range messages {
		out[i] = map[string]string{"role": string(m.Role), "content": m.Content}
	}
	return out
}

func extractContent(data []byte) string {
	// Try OpenAI-compatible format: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Try Ollama /api/chat format: {"message": {"content": "..."}}
	var ollamaResp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil && ollamaResp.Message.Content != "" {
		return ollamaResp.Message.Content
	}

	return string(data)
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}
