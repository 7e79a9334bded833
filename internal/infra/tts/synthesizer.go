package tts

import (
	"context"
	"fmt"

	"interview-coach/internal/infra/audio"
)

// Engine renders text to samples at the engine's native rate.
type Engine interface {
	Synthesize(ctx context.Context, text string) (*audio.Waveform, error)
}

// Synthesizer wraps engine output in a WAV container.
type Synthesizer struct {
	engine Engine
}

func NewSynthesizer(engine Engine) *Synthesizer {
	return &Synthesizer{engine: engine}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	w, err := s.engine.Synthesize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("synthesizing reply: %w", err)
	}

	wav, err := audio.EncodeWAV(w)
	if err != nil {
		return nil, fmt.Errorf("synthesizing reply: %w", err)
	}
	return wav, nil
}
