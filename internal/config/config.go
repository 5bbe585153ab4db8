// Package config handles loading and validating the baristad configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the baristad daemon.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	TTS     TTSConfig     `mapstructure:"tts"`
	Store   StoreConfig   `mapstructure:"store"`
	Profile ProfileConfig `mapstructure:"profile"`
	Agent   AgentConfig   `mapstructure:"agent"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the API and health server settings.
type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	HealthPort int    `mapstructure:"health_port"`
	MediaDir   string `mapstructure:"media_dir"`
}

// LLMConfig selects and configures the language-model backend.
type LLMConfig struct {
	Backend string          `mapstructure:"backend"` // "openai" or "local"
	OpenAI  OpenAILLMConfig `mapstructure:"openai"`
	Local   LocalLLMConfig  `mapstructure:"local"`
}

// OpenAILLMConfig holds OpenAI API settings.
type OpenAILLMConfig struct {
	APIKey             string `mapstructure:"api_key"`
	TranscriptionModel string `mapstructure:"transcription_model"`
	CompletionModel    string `mapstructure:"completion_model"`
}

// LocalLLMConfig holds self-hosted model settings.
type LocalLLMConfig struct {
	WhisperEndpoint string `mapstructure:"whisper_endpoint"`
	ChatEndpoint    string `mapstructure:"chat_endpoint"`
	ChatModel       string `mapstructure:"chat_model"` // Ollama model name (e.g., "llama3.2:1b")
	Language        string `mapstructure:"language"`   // ISO-639-1 transcription hint (e.g., "en")
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Backend string          `mapstructure:"backend"` // "openai" or "piper"
	OpenAI  OpenAITTSConfig `mapstructure:"openai"`
	Piper   PiperConfig     `mapstructure:"piper"`
}

// OpenAITTSConfig holds OpenAI speech API settings.
type OpenAITTSConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	Voice      string `mapstructure:"voice"`
	SpeechMode string `mapstructure:"speech_mode"` // "child", "adult", or "senior"
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
type PiperConfig struct {
	Endpoint string `mapstructure:"endpoint"` // Wyoming TCP endpoint (host:port)
	Voice    string `mapstructure:"voice"`    // Piper voice model name
}

// StoreConfig holds order persistence settings.
type StoreConfig struct {
	Mongo        MongoConfig `mapstructure:"mongo"`
	SnapshotPath string      `mapstructure:"snapshot_path"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

// ProfileConfig points at the customer profile file.
type ProfileConfig struct {
	Path string `mapstructure:"path"`
}

// AgentConfig holds dialogue settings.
type AgentConfig struct {
	Timezone          string `mapstructure:"timezone"` // IANA name for ETA computation, "Local" by default
	DefaultETAMinutes int    `mapstructure:"default_eta_minutes"`
	IntroText         string `mapstructure:"intro_text"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./baristad.yaml, ./configs/baristad.yaml, /etc/baristad/baristad.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.media_dir", "./media")
	v.SetDefault("llm.backend", "openai")
	v.SetDefault("llm.openai.transcription_model", "gpt-4o-transcribe")
	v.SetDefault("llm.openai.completion_model", "gpt-4o-mini")
	v.SetDefault("llm.local.whisper_endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("llm.local.chat_endpoint", "http://localhost:11434/api/chat")
	v.SetDefault("llm.local.chat_model", "llama3")
	v.SetDefault("llm.local.language", "en")
	v.SetDefault("tts.backend", "openai")
	v.SetDefault("tts.openai.model", "gpt-4o-mini-tts")
	v.SetDefault("tts.openai.voice", "ballad")
	v.SetDefault("tts.openai.speech_mode", "senior")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.database", "order")
	v.SetDefault("store.mongo.collection", "order_list")
	v.SetDefault("store.snapshot_path", "./media/final_order.json")
	v.SetDefault("profile.path", "./user_info.json")
	v.SetDefault("agent.timezone", "Local")
	v.SetDefault("agent.default_eta_minutes", 10)
	v.SetDefault("agent.intro_text",
		"Hello! Welcome to the voice order agent. Start ordering! "+
			"Choose between normal ordering, recommendation, or order using nickname.")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("baristad")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/baristad")
	}

	// Environment variables: BARISTAD_SERVER_PORT, BARISTAD_LLM_BACKEND, etc.
	v.SetEnvPrefix("BARISTAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.LLM.OpenAI.APIKey = resolveEnvRef(cfg.LLM.OpenAI.APIKey)
	cfg.TTS.OpenAI.APIKey = resolveEnvRef(cfg.TTS.OpenAI.APIKey)
	cfg.Store.Mongo.URI = resolveEnvRef(cfg.Store.Mongo.URI)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
