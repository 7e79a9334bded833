package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"interview-coach/internal/application"
)

// FileSource replays recorded utterances from a directory in name order. Each
// consumed file is renamed with a ".processed" suffix. With watch enabled it
// keeps polling for new files; otherwise it reports ErrSourceExhausted.
type FileSource struct {
	dir       string
	watch     bool
	processed map[string]bool
	mu        sync.Mutex
}

func NewFileSource(dir string, watch bool) *FileSource {
	return &FileSource{
		dir:       dir,
		watch:     watch,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextUtterance(ctx context.Context) ([]byte, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		audio, err := f.checkForNewFile()
		if err != nil {
			return nil, err
		}
		if audio != nil {
			return audio, nil
		}
		if !f.watch {
			return nil, application.ErrSourceExhausted
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (f *FileSource) checkForNewFile() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if ext != ".wav" && ext != ".mp3" && ext != ".m4a" && ext != ".webm" {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true

		if err := os.Rename(path, path+".processed"); err != nil {
			return nil, fmt.Errorf("marking %s processed: %w", path, err)
		}

		return data, nil
	}

	return nil, nil
}

// DirSink writes every reply as a numbered WAV file.
type DirSink struct {
	dir string

	mu    sync.Mutex
	count int
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

func (d *DirSink) Play(_ context.Context, wav []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	d.count++
	path := filepath.Join(d.dir, fmt.Sprintf("reply-%03d.wav", d.count))
	if err := os.WriteFile(path, wav, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (d *DirSink) Close() error {
	return nil
}
