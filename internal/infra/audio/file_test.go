package audio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"interview-coach/internal/application"
	"interview-coach/internal/infra/audio"
)

func TestFileSource_ReadsInNameOrder(t *testing.T) {
	tmpDir := t.TempDir()

	testCases := []struct {
		filename string
		content  []byte
	}{
		{"answer1.wav", []byte("RIFF....WAVEfmt audio data 1")},
		{"answer2.webm", []byte("webm audio data 2")},
		{"notes.txt", []byte("ignored")},
	}

	for _, tc := range testCases {
		path := filepath.Join(tmpDir, tc.filename)
		if err := os.WriteFile(path, tc.content, 0644); err != nil {
			t.Fatalf("writing test file: %v", err)
		}
	}

	source := audio.NewFileSource(tmpDir, false)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	audio1, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("reading first utterance: %v", err)
	}
	if string(audio1) != "RIFF....WAVEfmt audio data 1" {
		t.Errorf("first utterance: got %q", audio1)
	}

	audio2, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("reading second utterance: %v", err)
	}
	if string(audio2) != "webm audio data 2" {
		t.Errorf("second utterance: got %q", audio2)
	}

	if _, err := source.NextUtterance(ctx); !errors.Is(err, application.ErrSourceExhausted) {
		t.Errorf("third read: got %v, want ErrSourceExhausted", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "answer1.wav.processed")); err != nil {
		t.Errorf("consumed file not marked processed: %v", err)
	}
}

func TestFileSource_WatchPicksUpNewFiles(t *testing.T) {
	tmpDir := t.TempDir()
	source := audio.NewFileSource(tmpDir, true)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(filepath.Join(tmpDir, "late.wav"), []byte("late"), 0644)
	}()

	got, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("NextUtterance error: %v", err)
	}
	if string(got) != "late" {
		t.Errorf("got %q, want %q", got, "late")
	}
}

func TestFileSource_WatchStopsOnCancel(t *testing.T) {
	source := audio.NewFileSource(t.TempDir(), true)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := source.NextUtterance(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want deadline exceeded", err)
	}
}

func TestDirSink_WritesNumberedReplies(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replies")
	sink := audio.NewDirSink(dir)

	for _, reply := range []string{"first", "second"} {
		if err := sink.Play(context.Background(), []byte(reply)); err != nil {
			t.Fatalf("Play error: %v", err)
		}
	}

	got, err := os.ReadFile(filepath.Join(dir, "reply-002.wav"))
	if err != nil {
		t.Fatalf("reading reply: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("reply-002: got %q", got)
	}
}
