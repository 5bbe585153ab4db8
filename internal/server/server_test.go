package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokabrew/baristad/internal/agent"
	"github.com/mokabrew/baristad/internal/config"
	"github.com/mokabrew/baristad/internal/order"
	"github.com/mokabrew/baristad/internal/tts"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	return f.text, f.err
}

type fakeSynth struct {
	err   error
	calls int
}

func (f *fakeSynth) Name() string { return "fake" }

func (f *fakeSynth) Synthesize(_ context.Context, _ string) (*tts.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &tts.Result{Audio: []byte("mp3-bytes"), ContentType: "audio/mpeg"}, nil
}

func (f *fakeSynth) Close() error { return nil }

type fakeSnapshot struct {
	order *order.FinalOrder
	err   error
}

func (f *fakeSnapshot) Read() (*order.FinalOrder, error) {
	return f.order, f.err
}

func newTestServer(t *testing.T, transcriber *fakeTranscriber, handle Handler,
	synth *fakeSynth, snap *fakeSnapshot) (*Server, string) {

	t.Helper()
	mediaDir := t.TempDir()
	s := New(config.ServerConfig{Port: 0, MediaDir: mediaDir},
		"welcome", transcriber, handle, synth, snap)
	return s, mediaDir
}

func okHandler(reply string, done bool) Handler {
	return func(_ context.Context, _ string) (*agent.Result, error) {
		return &agent.Result{Reply: reply, Done: done}, nil
	}
}

func TestHandleProcess_TextInput(t *testing.T) {
	synth := &fakeSynth{}
	s, mediaDir := newTestServer(t, &fakeTranscriber{}, okHandler("What size?", false), synth, &fakeSnapshot{})

	req := httptest.NewRequest(http.MethodPost, "/api/process",
		strings.NewReader(`{"text": "I'd like a latte"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp processResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "I'd like a latte", resp.UserText)
	assert.Equal(t, "What size?", resp.AssistantText)
	assert.Contains(t, resp.AudioURL, "/media/latest_reply.mp3")
	assert.False(t, resp.Final)

	data, err := os.ReadFile(filepath.Join(mediaDir, "latest_reply.mp3"))
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), data)
}

func TestHandleProcess_AudioUpload(t *testing.T) {
	transcriber := &fakeTranscriber{text: "Yes, proceed to payment"}
	s, _ := newTestServer(t, transcriber, okHandler("Order placed!", true), &fakeSynth{}, &fakeSnapshot{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", "utterance.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("riff-audio-bytes"))
	require.NoError(t, err)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	s.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp processResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Yes, proceed to payment", resp.UserText)
	assert.True(t, resp.Final)
}

func TestHandleProcess_NoAudioProvided(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{}, okHandler("", false), &fakeSynth{}, &fakeSnapshot{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("note", "no file here"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	s.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "no audio file")
}

func TestHandleProcess_TranscriptionError(t *testing.T) {
	transcriber := &fakeTranscriber{err: errors.New("whisper offline")}
	s, _ := newTestServer(t, transcriber, okHandler("", false), &fakeSynth{}, &fakeSnapshot{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("audio", "utterance.wav")
	require.NoError(t, err)
	_, _ = part.Write([]byte("bytes"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	s.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "transcription failed")
}

func TestHandleProcess_AgentError(t *testing.T) {
	handler := func(_ context.Context, _ string) (*agent.Result, error) {
		return nil, errors.New("model unavailable")
	}
	s, _ := newTestServer(t, &fakeTranscriber{}, handler, &fakeSynth{}, &fakeSnapshot{})

	req := httptest.NewRequest(http.MethodPost, "/api/process",
		strings.NewReader(`{"text": "hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleIntro_SynthesizesOnce(t *testing.T) {
	synth := &fakeSynth{}
	s, mediaDir := newTestServer(t, &fakeTranscriber{}, okHandler("", false), synth, &fakeSnapshot{})

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/intro", nil)
		w := httptest.NewRecorder()
		s.Routes().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 1, synth.calls, "greeting is synthesized only when missing")
	_, err := os.Stat(filepath.Join(mediaDir, "intro.mp3"))
	assert.NoError(t, err)
}

func TestHandleConfirm(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{}, okHandler("", false), &fakeSynth{}, &fakeSnapshot{})

	req := httptest.NewRequest(http.MethodGet, "/api/confirm?text=Your+order+is+confirmed", nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("mp3-bytes"), w.Body.Bytes())
}

func TestHandleConfirm_MissingText(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{}, okHandler("", false), &fakeSynth{}, &fakeSnapshot{})

	req := httptest.NewRequest(http.MethodGet, "/api/confirm", nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleLatestOrder(t *testing.T) {
	snap := &fakeSnapshot{order: &order.FinalOrder{ID: "abc", Menu: "Latte", ETA: "14:20"}}
	s, _ := newTestServer(t, &fakeTranscriber{}, okHandler("", false), &fakeSynth{}, snap)

	req := httptest.NewRequest(http.MethodGet, "/api/order/latest", nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got order.FinalOrder
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "Latte", got.Menu)
}

func TestHandleLatestOrder_NoneYet(t *testing.T) {
	snap := &fakeSnapshot{err: os.ErrNotExist}
	s, _ := newTestServer(t, &fakeTranscriber{}, okHandler("", false), &fakeSynth{}, snap)

	req := httptest.NewRequest(http.MethodGet, "/api/order/latest", nil)
	w := httptest.NewRecorder()
	s.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
