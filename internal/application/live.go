package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrSourceExhausted is returned by an AudioSource that has no more audio.
var ErrSourceExhausted = errors.New("audio source exhausted")

var stopWords = map[string]bool{
	"quit": true,
	"exit": true,
}

// LiveCoach drives the coach from a local audio source until the context is
// cancelled or the user says "quit" or "exit".
type LiveCoach struct {
	source    AudioSource
	sink      AudioSink
	coach     *Coach
	sessionID string
	logger    *slog.Logger
}

func NewLiveCoach(source AudioSource, sink AudioSink, coach *Coach, sessionID string, logger *slog.Logger) *LiveCoach {
	return &LiveCoach{
		source:    source,
		sink:      sink,
		coach:     coach,
		sessionID: sessionID,
		logger:    logger,
	}
}

func (l *LiveCoach) Run(ctx context.Context) error {
	l.logger.Info("starting audio source", "source", l.source.Name())
	if err := l.source.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer l.source.Stop()

	l.logger.Info("speak now, pause to send", "session_id", l.sessionID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		done, err := l.processOneUtterance(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrSourceExhausted) {
				return err
			}
			l.logger.Error("processing utterance", "error", err)
			continue
		}
		if done {
			l.logger.Info("bye")
			return nil
		}
	}
}

func (l *LiveCoach) processOneUtterance(ctx context.Context) (bool, error) {
	audio, err := l.source.NextUtterance(ctx)
	if err != nil {
		return false, fmt.Errorf("getting audio: %w", err)
	}

	transcript, err := l.coach.Transcribe(ctx, audio)
	if err != nil {
		return false, err
	}
	if transcript == "" {
		l.logger.Info("heard nothing, try again")
		return false, nil
	}

	if stopWords[strings.ToLower(transcript)] {
		return true, nil
	}

	result, err := l.coach.Respond(ctx, l.sessionID, transcript)
	if err != nil {
		return false, err
	}

	if err := l.sink.Play(ctx, result.ReplyAudio); err != nil {
		return false, fmt.Errorf("playing reply: %w", err)
	}
	return false, nil
}
