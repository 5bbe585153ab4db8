// Baristad is a voice-first coffee-ordering agent daemon. It transcribes
// spoken input, drives a scripted ordering dialogue through a language
// model, extracts the structured order on payment confirmation, persists it,
// and speaks the reply back.
//
// Usage:
//
//	baristad [flags]
//	baristad --config /path/to/baristad.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mokabrew/baristad/docs"
	"github.com/mokabrew/baristad/internal/agent"
	"github.com/mokabrew/baristad/internal/config"
	"github.com/mokabrew/baristad/internal/conversation"
	"github.com/mokabrew/baristad/internal/health"
	"github.com/mokabrew/baristad/internal/llm"
	localllm "github.com/mokabrew/baristad/internal/llm/local"
	openaillm "github.com/mokabrew/baristad/internal/llm/openai"
	"github.com/mokabrew/baristad/internal/order"
	"github.com/mokabrew/baristad/internal/profile"
	"github.com/mokabrew/baristad/internal/server"
	"github.com/mokabrew/baristad/internal/store"
	mongostore "github.com/mokabrew/baristad/internal/store/mongo"
	"github.com/mokabrew/baristad/internal/tts"
	openaitts "github.com/mokabrew/baristad/internal/tts/openai"
	pipertts "github.com/mokabrew/baristad/internal/tts/piper"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/baristad.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("baristad %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("baristad starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load the customer profile; it seeds the system prompt and the
	// identity fields of every finalized order.
	prof, err := profile.Load(cfg.Profile.Path)
	if err != nil {
		slog.Error("failed to load customer profile", "path", cfg.Profile.Path, "error", err)
		os.Exit(1)
	}
	slog.Info("customer profile loaded", "name", prof.Name, "saved_menu", len(prof.SavedMenu))

	// Initialize the language-model backend.
	var client llm.Client
	switch cfg.LLM.Backend {
	case "openai":
		client = openaillm.New(cfg.LLM.OpenAI)
		slog.Info("using OpenAI language model",
			"transcription_model", cfg.LLM.OpenAI.TranscriptionModel,
			"completion_model", cfg.LLM.OpenAI.CompletionModel)
	case "local":
		client = localllm.New(cfg.LLM.Local)
		slog.Info("using local language model",
			"whisper", cfg.LLM.Local.WhisperEndpoint,
			"chat", cfg.LLM.Local.ChatEndpoint)
	default:
		slog.Error("unknown llm backend", "backend", cfg.LLM.Backend)
		os.Exit(1)
	}
	defer client.Close()

	// Initialize the speech synthesizer.
	var synth tts.Synthesizer
	switch cfg.TTS.Backend {
	case "openai":
		synth = openaitts.New(cfg.TTS.OpenAI)
		slog.Info("using OpenAI speech synthesis", "voice", cfg.TTS.OpenAI.Voice)
	case "piper":
		synth = pipertts.New(cfg.TTS.Piper)
		slog.Info("using Piper speech synthesis", "endpoint", cfg.TTS.Piper.Endpoint)
	default:
		slog.Error("unknown tts backend", "backend", cfg.TTS.Backend)
		os.Exit(1)
	}
	defer synth.Close()

	// Resolve the reference timezone for arrival-time computation.
	loc, err := time.LoadLocation(cfg.Agent.Timezone)
	if err != nil {
		slog.Error("invalid timezone", "timezone", cfg.Agent.Timezone, "error", err)
		os.Exit(1)
	}

	// Wire the ordering agent: one session per process lifetime.
	session := conversation.NewSession(conversation.BuildSystemPrompt(prof))
	snapshot := store.NewSnapshotWriter(cfg.Store.SnapshotPath)
	orders := mongostore.New(cfg.Store.Mongo)
	finalizer := order.NewFinalizer(loc)

	ordering := agent.New(session, client, prof, finalizer, orders, snapshot,
		agent.WithExtractor(agent.NewRegexExtractor(cfg.Agent.DefaultETAMinutes)))

	// Start the health check server.
	healthServer := health.New(cfg.Server.HealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start the API server.
	api := server.New(cfg.Server, cfg.Agent.IntroText, client, ordering.HandleUtterance, synth, snapshot)

	healthServer.SetReady(true)
	slog.Info("baristad ready", "port", cfg.Server.Port, "health_port", cfg.Server.HealthPort)

	if err := api.Listen(ctx); err != nil {
		slog.Error("api server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("baristad stopped")
}
