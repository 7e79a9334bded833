package app

import (
	"fmt"
	"log/slog"
	"os"

	"interview-coach/config"
	"interview-coach/internal/application"
	"interview-coach/internal/dialogue"
	"interview-coach/internal/infra/anthropic"
	"interview-coach/internal/infra/gemini"
	"interview-coach/internal/infra/groq"
	"interview-coach/internal/infra/stt"
	"interview-coach/internal/infra/tts"
)

// Build wires the engines named in cfg into a coach backed by a fresh
// dialogue store.
func Build(cfg *config.Config, recorder application.Recorder, logger *slog.Logger) (*application.Coach, *dialogue.Store, error) {
	transcriber, err := newTranscriber(cfg.Transcription)
	if err != nil {
		return nil, nil, err
	}

	completer, err := newCompleter(cfg.Completion)
	if err != nil {
		return nil, nil, err
	}

	synthesizer, err := newSynthesizer(cfg.Synthesis)
	if err != nil {
		return nil, nil, err
	}

	store := dialogue.NewStore(cfg.Coach.SystemPrompt)

	logger.Info("coach engines ready",
		"transcription", cfg.Transcription.Engine,
		"completion", cfg.Completion.Provider,
		"synthesis", cfg.Synthesis.Engine,
	)

	coach := application.NewCoach(transcriber, completer, synthesizer, store, recorder, logger)
	return coach, store, nil
}

func newTranscriber(cfg config.TranscriptionConfig) (*stt.Transcriber, error) {
	switch cfg.Engine {
	case "whisper-cli":
		engine, err := stt.NewWhisperCPP(cfg.WhisperCLI, cfg.ModelPath, cfg.Language, cfg.Threads)
		if err != nil {
			return nil, fmt.Errorf("creating whisper.cpp engine: %w", err)
		}
		return stt.NewTranscriber(engine.WithFFmpeg(cfg.FFmpeg)), nil
	case "openai":
		return stt.NewTranscriber(stt.NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Language)), nil
	default:
		return nil, fmt.Errorf("unknown transcription engine %q", cfg.Engine)
	}
}

func newCompleter(cfg config.CompletionConfig) (application.Completer, error) {
	switch cfg.Provider {
	case "groq":
		return groq.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens), nil
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return groq.NewClient(cfg.APIKey, baseURL, cfg.Model, cfg.MaxTokens), nil
	case "anthropic":
		if cfg.BaseURL != "" {
			return anthropic.NewClaudeClientWithURL(cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.BaseURL), nil
		}
		return anthropic.NewClaudeClient(cfg.APIKey, cfg.Model, cfg.MaxTokens), nil
	case "gemini":
		if cfg.BaseURL != "" {
			return gemini.NewClientWithURL(cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.BaseURL), nil
		}
		return gemini.NewClient(cfg.APIKey, cfg.Model, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

func newSynthesizer(cfg config.SynthesisConfig) (*tts.Synthesizer, error) {
	switch cfg.Engine {
	case "coqui":
		return tts.NewSynthesizer(tts.NewCoquiClient(cfg.URL)), nil
	case "openai":
		return tts.NewSynthesizer(tts.NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Voice)), nil
	default:
		return nil, fmt.Errorf("unknown synthesis engine %q", cfg.Engine)
	}
}

func NewLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
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
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
