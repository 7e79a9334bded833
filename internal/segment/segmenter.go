// Package segment ends utterances on sustained low energy.
package segment

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrStreamClosed is returned when the block stream ends before a pause.
var ErrStreamClosed = errors.New("audio stream closed before end of utterance")

type Config struct {
	SampleRate       int
	BlockDuration    time.Duration
	Pause            time.Duration
	SilenceThreshold float64
}

func DefaultConfig() Config {
	return Config{
		SampleRate:       16000,
		BlockDuration:    200 * time.Millisecond,
		Pause:            3 * time.Second,
		SilenceThreshold: 0.01,
	}
}

// BlockFrames is the number of samples per captured block.
func (c Config) BlockFrames() int {
	return int(float64(c.SampleRate) * c.BlockDuration.Seconds())
}

// Segmenter accumulates blocks until the silence accumulated since the last
// loud block reaches the pause length. At least two blocks are required. There
// is no noise-floor adaptation and no maximum utterance length.
type Segmenter struct {
	cfg Config
}

func New(cfg Config) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// Segment drains blocks until the utterance ends and returns every block
// received so far concatenated in arrival order.
func (s *Segmenter) Segment(ctx context.Context, blocks <-chan []float32) ([]float32, error) {
	var (
		captured [][]float32
		total    int
		silence  time.Duration
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case block, ok := <-blocks:
			if !ok {
				return nil, ErrStreamClosed
			}

			captured = append(captured, block)
			total += len(block)

			if RMS(block) < s.cfg.SilenceThreshold {
				silence += s.cfg.BlockDuration
			} else {
				silence = 0
			}

			if silence >= s.cfg.Pause && len(captured) > 1 {
				return concat(captured, total), nil
			}
		}
	}
}

// RMS is the root-mean-square energy of samples normalized to [-1, 1].
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func concat(blocks [][]float32, total int) []float32 {
	out := make([]float32, 0, total)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}
