package stt_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"interview-coach/internal/infra/stt"
)

type fakeEngine struct {
	text  string
	err   error
	calls int
	path  string
	data  []byte
}

func (f *fakeEngine) TranscribeFile(_ context.Context, path string) (string, error) {
	f.calls++
	f.path = path
	f.data, _ = os.ReadFile(path)
	return f.text, f.err
}

func TestTranscriber_EmptyAudioSkipsEngine(t *testing.T) {
	engine := &fakeEngine{text: "should not be used"}
	tr := stt.NewTranscriber(engine)

	text, err := tr.Transcribe(context.Background(), nil)
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}
	if text != "" {
		t.Errorf("text: got %q, want empty", text)
	}
	if engine.calls != 0 {
		t.Errorf("engine calls: got %d, want 0", engine.calls)
	}
}

func TestTranscriber_TrimsAndRemovesTempFile(t *testing.T) {
	engine := &fakeEngine{text: "  I would start with the grain of the table.\n"}
	tr := stt.NewTranscriber(engine)

	text, err := tr.Transcribe(context.Background(), []byte("RIFF-audio"))
	if err != nil {
		t.Fatalf("Transcribe error: %v", err)
	}

	if text != "I would start with the grain of the table." {
		t.Errorf("text: got %q", text)
	}
	if string(engine.data) != "RIFF-audio" {
		t.Errorf("engine saw %q, want the uploaded bytes", engine.data)
	}
	if _, err := os.Stat(engine.path); !os.IsNotExist(err) {
		t.Errorf("temp file %s still exists", engine.path)
	}
}

func TestTranscriber_EngineFailureRemovesTempFile(t *testing.T) {
	engineErr := errors.New("model crashed")
	engine := &fakeEngine{err: engineErr}
	tr := stt.NewTranscriber(engine)

	_, err := tr.Transcribe(context.Background(), []byte("RIFF-audio"))
	if !errors.Is(err, engineErr) {
		t.Fatalf("error: got %v, want wrapped engine error", err)
	}
	if engine.path == "" {
		t.Fatal("engine was not called")
	}
	if _, err := os.Stat(engine.path); !os.IsNotExist(err) {
		t.Errorf("temp file %s still exists", engine.path)
	}
}

func TestTranscriber_StagesByContainer(t *testing.T) {
	tests := []struct {
		name  string
		audio []byte
		want  string
	}{
		{name: "wav", audio: []byte("RIFF\x24\x00\x00\x00WAVEfmt "), want: ".wav"},
		{name: "webm", audio: []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81}, want: ".webm"},
		{name: "m4a", audio: []byte("\x00\x00\x00\x20ftypM4A "), want: ".m4a"},
		{name: "ogg", audio: []byte("OggS\x00\x02"), want: ".ogg"},
		{name: "mp3", audio: []byte("ID3\x04\x00"), want: ".mp3"},
		{name: "unknown", audio: []byte("raw-bytes"), want: ".wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{text: "ok"}
			if _, err := stt.NewTranscriber(engine).Transcribe(context.Background(), tt.audio); err != nil {
				t.Fatalf("Transcribe error: %v", err)
			}
			if got := filepath.Ext(engine.path); got != tt.want {
				t.Errorf("staged as %s, want extension %s", engine.path, tt.want)
			}
		})
	}
}
