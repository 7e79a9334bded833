package application

import "context"

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer turns reply text into a WAV-encoded waveform.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
