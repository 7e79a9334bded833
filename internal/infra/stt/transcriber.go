package stt

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Engine turns an audio file on disk into text.
type Engine interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
}

// Transcriber stages raw audio in a temporary file for the engine. The file
// is named after the detected container and never outlives the call.
type Transcriber struct {
	engine Engine
}

func NewTranscriber(engine Engine) *Transcriber {
	return &Transcriber{engine: engine}
}

func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}

	f, err := os.CreateTemp("", "utterance-*"+containerExt(audio))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	text, err := t.engine.TranscribeFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}

	return strings.TrimSpace(text), nil
}
