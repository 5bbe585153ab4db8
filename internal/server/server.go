// Package server implements the HTTP API for the ordering agent.
//
// It exposes the voice round-trip endpoint (audio in, spoken reply out),
// the intro/confirmation synthesis endpoints used by the kiosk frontend,
// and the latest-order snapshot. Synthesized replies land in the media
// directory under fixed names and are served back as static files.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/mokabrew/baristad/internal/agent"
	"github.com/mokabrew/baristad/internal/config"
	"github.com/mokabrew/baristad/internal/order"
	"github.com/mokabrew/baristad/internal/tts"
)

// maxAudioBytes bounds uploaded audio size.
const maxAudioBytes = 25 << 20 // 25 MB

// Handler processes one transcribed utterance through the ordering agent.
type Handler func(ctx context.Context, utterance string) (*agent.Result, error)

// Transcriber converts uploaded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// SnapshotReader loads the last finalized order.
type SnapshotReader interface {
	Read() (*order.FinalOrder, error)
}

// Server is the baristad HTTP API server.
type Server struct {
	port        int
	mediaDir    string
	introText   string
	transcriber Transcriber
	handle      Handler
	synth       tts.Synthesizer
	snapshot    SnapshotReader
	server      *http.Server
}

// New creates the API server.
func New(cfg config.ServerConfig, introText string, transcriber Transcriber,
	handle Handler, synth tts.Synthesizer, snapshot SnapshotReader) *Server {

	return &Server{
		port:        cfg.Port,
		mediaDir:    cfg.MediaDir,
		introText:   introText,
		transcriber: transcriber,
		handle:      handle,
		synth:       synth,
		snapshot:    snapshot,
	}
}

// Routes builds the request mux. Split out from Listen for tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/process", s.handleProcess)
	mux.HandleFunc("POST /api/intro", s.handleIntro)
	mux.HandleFunc("GET /api/confirm", s.handleConfirm)
	mux.HandleFunc("GET /api/order/latest", s.handleLatestOrder)

	mux.Handle("GET /media/", http.StripPrefix("/media/",
		http.FileServer(http.Dir(s.mediaDir))))

	// Swagger UI for the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// Listen starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Listen(ctx context.Context) error {
	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return fmt.Errorf("creating media dir: %w", err)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("api server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// processResponse is the reply payload for one voice round-trip.
type processResponse struct {
	UserText      string `json:"user_text"`
	AssistantText string `json:"assistant_text"`
	AudioURL      string `json:"audio_url"`
	Final         bool   `json:"final"`
}

// handleProcess runs one full voice turn.
//
// @Summary     Process one voice or text order turn
// @Description Accepts a multipart audio upload (field "audio") or a JSON body {"text": "..."} with a
// @Description pre-transcribed utterance. The utterance is run through the ordering dialogue; the reply
// @Description is synthesized to the media directory and returned by URL. "final" is true once the
// @Description order has been persisted.
// @Tags        order
// @Accept      mpfd
// @Accept      json
// @Produce     json
// @Param       audio  formData  file  false  "Audio recording of the utterance"
// @Success     200  {object}  processResponse
// @Failure     400  {object}  errorResponse
// @Failure     500  {object}  errorResponse
// @Router      /api/process [post]
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	text, ok := s.utteranceText(w, r)
	if !ok {
		return
	}

	result, err := s.handle(r.Context(), text)
	if err != nil {
		slog.Error("utterance handling failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("agent failed: %v", err))
		return
	}

	synthResult, err := s.synth.Synthesize(r.Context(), result.Reply)
	if err != nil {
		slog.Error("reply synthesis failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("synthesis failed: %v", err))
		return
	}

	filename, err := s.saveMedia("latest_reply", synthResult)
	if err != nil {
		slog.Error("saving reply audio failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("saving audio failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		UserText:      text,
		AssistantText: result.Reply,
		AudioURL:      s.audioURL(r, filename),
		Final:         result.Done,
	})
}

// utteranceText extracts the user's utterance from the request, transcribing
// uploaded audio when present. Writes the error response itself on failure.
func (s *Server) utteranceText(w http.ResponseWriter, r *http.Request) (string, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
			return "", false
		}
		if body.Text == "" {
			writeError(w, http.StatusBadRequest, "no text provided")
			return "", false
		}
		return body.Text, true
	}

	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return "", false
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no audio file provided")
		return "", false
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading audio: "+err.Error())
		return "", false
	}

	text, err := s.transcriber.Transcribe(r.Context(), audio, header.Header.Get("Content-Type"))
	if err != nil {
		slog.Error("transcription failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("transcription failed: %v", err))
		return "", false
	}

	slog.Info("utterance transcribed", "text_length", len(text))
	return text, true
}

// handleIntro ensures the greeting audio exists and returns its URL.
//
// @Summary     Get the greeting audio
// @Description Synthesizes the configured greeting once and returns its media URL on every call after.
// @Tags        media
// @Produce     json
// @Success     200  {object}  map[string]string
// @Failure     500  {object}  errorResponse
// @Router      /api/intro [post]
func (s *Server) handleIntro(w http.ResponseWriter, r *http.Request) {
	if filename, ok := s.findMedia("intro"); ok {
		writeJSON(w, http.StatusOK, map[string]string{"audio_url": s.audioURL(r, filename)})
		return
	}

	synthResult, err := s.synth.Synthesize(r.Context(), s.introText)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("synthesis failed: %v", err))
		return
	}

	filename, err := s.saveMedia("intro", synthResult)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("saving audio failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"audio_url": s.audioURL(r, filename)})
}

// handleConfirm synthesizes arbitrary confirmation text and streams it back.
//
// @Summary     Synthesize confirmation text
// @Tags        media
// @Produce     audio/mpeg
// @Produce     audio/wav
// @Param       text  query  string  true  "Text to synthesize"
// @Success     200  {file}  binary
// @Failure     400  {object}  errorResponse
// @Failure     500  {object}  errorResponse
// @Router      /api/confirm [get]
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeError(w, http.StatusBadRequest, "missing 'text' query parameter")
		return
	}

	synthResult, err := s.synth.Synthesize(r.Context(), text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("synthesis failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", synthResult.ContentType)
	_, _ = w.Write(synthResult.Audio)
}

// handleLatestOrder returns the most recently finalized order.
//
// @Summary     Get the latest finalized order
// @Tags        order
// @Produce     json
// @Success     200  {object}  order.FinalOrder
// @Failure     404  {object}  errorResponse
// @Failure     500  {object}  errorResponse
// @Router      /api/order/latest [get]
func (s *Server) handleLatestOrder(w http.ResponseWriter, _ *http.Request) {
	o, err := s.snapshot.Read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "no finalized order yet")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("reading order: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// --- Helpers ---

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// saveMedia writes audio under a fixed base name with an extension matching
// its content type, overwriting any previous file.
func (s *Server) saveMedia(base string, res *tts.Result) (string, error) {
	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return "", err
	}
	filename := base + extForContentType(res.ContentType)
	if err := os.WriteFile(filepath.Join(s.mediaDir, filename), res.Audio, 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

// findMedia looks for an existing media file for the base name, trying each
// audio extension a synthesizer backend can produce.
func (s *Server) findMedia(base string) (string, bool) {
	for _, ext := range []string{".mp3", ".wav"} {
		if _, err := os.Stat(filepath.Join(s.mediaDir, base+ext)); err == nil {
			return base + ext, true
		}
	}
	return "", false
}

func (s *Server) audioURL(r *http.Request, filename string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/media/%s", scheme, r.Host, filename)
}

func extForContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	default:
		return ".mp3"
	}
}
