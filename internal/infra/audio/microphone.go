//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"interview-coach/internal/segment"
)

// MicrophoneSource captures one utterance per call from the default input
// device. The stream only runs while an utterance is being captured.
type MicrophoneSource struct {
	cfg       segment.Config
	queueSize int
	segmenter *segment.Segmenter
	logger    *slog.Logger

	dropped atomic.Int64
}

func NewMicrophoneSource(cfg segment.Config, queueSize int, logger *slog.Logger) *MicrophoneSource {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &MicrophoneSource{
		cfg:       cfg,
		queueSize: queueSize,
		segmenter: segment.New(cfg),
		logger:    logger,
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	return nil
}

func (m *MicrophoneSource) Stop() error {
	return portaudio.Terminate()
}

func (m *MicrophoneSource) NextUtterance(ctx context.Context) ([]byte, error) {
	blocks := make(chan []float32, m.queueSize)

	// Runs on the device thread: copy and hand off, never block.
	callback := func(in []float32) {
		block := make([]float32, len(in))
		copy(block, in)
		select {
		case blocks <- block:
		default:
			m.dropped.Add(1)
		}
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.cfg.SampleRate), m.cfg.BlockFrames(), callback)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}

	samples, segErr := m.segmenter.Segment(ctx, blocks)

	if err := stream.Stop(); err != nil {
		m.logger.Warn("stopping input stream", "error", err)
	}
	if n := m.dropped.Swap(0); n > 0 {
		m.logger.Warn("dropped audio blocks, capture queue full", "blocks", n)
	}

	if segErr != nil {
		return nil, segErr
	}

	m.logger.Debug("utterance captured",
		"samples", len(samples),
		"seconds", float64(len(samples))/float64(m.cfg.SampleRate),
	)

	return EncodeWAV(&Waveform{
		Samples:    FloatToPCM16(samples),
		SampleRate: m.cfg.SampleRate,
	})
}

// Speaker plays WAV replies on the default output device and blocks until
// playback finishes.
type Speaker struct {
	framesPerBuffer int
}

func NewSpeaker() *Speaker {
	return &Speaker{framesPerBuffer: 1024}
}

func (s *Speaker) Play(ctx context.Context, wav []byte) error {
	w, err := DecodeWAV(wav)
	if err != nil {
		return fmt.Errorf("decoding reply: %w", err)
	}

	buffer := make([]float32, s.framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(w.SampleRate), len(buffer), buffer)
	if err != nil {
		return fmt.Errorf("opening output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting output stream: %w", err)
	}
	defer stream.Stop()

	samples := PCM16ToFloat(w.Samples)
	for len(samples) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n := copy(buffer, samples)
		for i := n; i < len(buffer); i++ {
			buffer[i] = 0
		}
		samples = samples[n:]

		if err := stream.Write(); err != nil {
			return fmt.Errorf("writing to stream: %w", err)
		}
	}

	return nil
}

func (s *Speaker) Close() error {
	return nil
}
