package segment_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"interview-coach/internal/segment"
)

func block(value float32, n int) []float32 {
	b := make([]float32, n)
	for i := range b {
		b[i] = value
	}
	return b
}

func feed(blocks ...[]float32) <-chan []float32 {
	ch := make(chan []float32, len(blocks))
	for _, b := range blocks {
		ch <- b
	}
	close(ch)
	return ch
}

func testConfig() segment.Config {
	return segment.Config{
		SampleRate:       100,
		BlockDuration:    200 * time.Millisecond,
		Pause:            time.Second,
		SilenceThreshold: 0.01,
	}
}

func TestRMS(t *testing.T) {
	if got := segment.RMS(nil); got != 0 {
		t.Errorf("RMS(nil): got %v, want 0", got)
	}
	if got := segment.RMS(block(0.5, 10)); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("RMS(constant 0.5): got %v", got)
	}
	if got := segment.RMS([]float32{3, -4}); math.Abs(got-math.Sqrt(12.5)) > 1e-9 {
		t.Errorf("RMS(3,-4): got %v", got)
	}
}

func TestConfig_BlockFrames(t *testing.T) {
	if got := segment.DefaultConfig().BlockFrames(); got != 3200 {
		t.Errorf("BlockFrames: got %d, want 3200", got)
	}
}

func TestSegment_EndsAfterPause(t *testing.T) {
	seg := segment.New(testConfig())

	speech := block(0.2, 20)
	quiet := block(0.001, 20)
	blocks := [][]float32{speech, speech, quiet, quiet, quiet, quiet, quiet, speech}

	// Mark each block so the order can be checked.
	for i := range blocks {
		b := make([]float32, len(blocks[i]))
		copy(b, blocks[i])
		b[0] = float32(i) / 1000
		blocks[i] = b
	}

	got, err := seg.Segment(context.Background(), feed(blocks...))
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}

	if len(got) != 7*20 {
		t.Fatalf("samples: got %d, want %d", len(got), 7*20)
	}
	for i := 0; i < 7; i++ {
		if got[i*20] != float32(i)/1000 {
			t.Errorf("block %d out of order: marker %v", i, got[i*20])
		}
	}
}

func TestSegment_LoudBlockResetsSilence(t *testing.T) {
	seg := segment.New(testConfig())

	speech := block(0.2, 10)
	quiet := block(0, 10)
	stream := feed(speech, quiet, quiet, quiet, quiet, speech, quiet, quiet, quiet, quiet, quiet)

	got, err := seg.Segment(context.Background(), stream)
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	if len(got) != 11*10 {
		t.Errorf("samples: got %d, want %d", len(got), 11*10)
	}
}

func TestSegment_RequiresTwoBlocks(t *testing.T) {
	cfg := testConfig()
	cfg.Pause = 200 * time.Millisecond
	seg := segment.New(cfg)

	quiet := block(0, 10)
	got, err := seg.Segment(context.Background(), feed(quiet, quiet, quiet))
	if err != nil {
		t.Fatalf("Segment error: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("samples: got %d, want 20 (two blocks)", len(got))
	}
}

func TestSegment_StreamClosed(t *testing.T) {
	seg := segment.New(testConfig())

	_, err := seg.Segment(context.Background(), feed(block(0.3, 10)))
	if !errors.Is(err, segment.ErrStreamClosed) {
		t.Fatalf("error: got %v, want ErrStreamClosed", err)
	}
}

func TestSegment_ContextCancelled(t *testing.T) {
	seg := segment.New(testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := seg.Segment(ctx, make(chan []float32))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error: got %v, want context.Canceled", err)
	}
}
