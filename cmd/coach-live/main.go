package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"interview-coach/config"
	"interview-coach/internal/app"
	"interview-coach/internal/application"
	"interview-coach/internal/infra/audio"
	"interview-coach/internal/segment"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coach, _, err := app.Build(cfg, nil, logger)
	if err != nil {
		logger.Error("building coach", "error", err)
		os.Exit(1)
	}

	source, sink := createAudio(cfg.Live, logger)
	defer sink.Close()

	sessionID := uuid.NewString()
	live := application.NewLiveCoach(source, sink, coach, sessionID, logger)

	logger.Info("starting live interview coach",
		"audio_source", source.Name(),
		"session_id", sessionID,
	)

	err = live.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, application.ErrSourceExhausted):
	default:
		logger.Error("live coach error", "error", err)
		os.Exit(1)
	}
}

func createAudio(cfg config.LiveConfig, logger *slog.Logger) (application.AudioSource, application.AudioSink) {
	switch cfg.Source {
	case "file":
		return audio.NewFileSource(cfg.FileDir, cfg.FileWatch), audio.NewDirSink(cfg.OutputDir)
	default:
		seg := segment.Config{
			SampleRate:       cfg.SampleRate,
			BlockDuration:    cfg.BlockDurationValue(),
			Pause:            cfg.PauseValue(),
			SilenceThreshold: cfg.SilenceThreshold,
		}
		return audio.NewMicrophoneSource(seg, cfg.QueueSize, logger), audio.NewSpeaker()
	}
}
