//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"interview-coach/internal/segment"
)

// MicrophoneSource stub when portaudio is not available
type MicrophoneSource struct {
	logger *slog.Logger
}

func NewMicrophoneSource(_ segment.Config, _ int, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{logger: logger}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	return fmt.Errorf("microphone source not available: rebuild with -tags portaudio")
}

func (m *MicrophoneSource) Stop() error {
	return nil
}

func (m *MicrophoneSource) NextUtterance(_ context.Context) ([]byte, error) {
	return nil, fmt.Errorf("microphone source not available")
}

// Speaker stub when portaudio is not available
type Speaker struct{}

func NewSpeaker() *Speaker {
	return &Speaker{}
}

func (s *Speaker) Play(_ context.Context, _ []byte) error {
	return fmt.Errorf("speaker not available: rebuild with -tags portaudio")
}

func (s *Speaker) Close() error {
	return nil
}
