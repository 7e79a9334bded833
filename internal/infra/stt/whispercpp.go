package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// maxStderr bounds how much tool output ends up in an error.
const maxStderr = 4 << 10

// WhisperCPP runs the local whisper.cpp CLI against a ggml model. Input that
// is not WAV is first converted to 16 kHz mono PCM with ffmpeg.
type WhisperCPP struct {
	cliPath   string
	modelPath string
	language  string
	threads   int
	ffmpeg    string
}

func NewWhisperCPP(cli, modelPath, language string, threads int) (*WhisperCPP, error) {
	cli = strings.TrimSpace(cli)
	if cli == "" {
		cli = "whisper-cli"
	}
	cliPath, err := exec.LookPath(cli)
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp CLI not found (%s): %w", cli, err)
	}

	modelPath = strings.TrimSpace(modelPath)
	if modelPath == "" {
		return nil, errors.New("whisper.cpp model path is required")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("whisper.cpp model not found: %s", modelPath)
	}

	if language == "" {
		language = "en"
	}

	return &WhisperCPP{
		cliPath:   cliPath,
		modelPath: modelPath,
		language:  language,
		threads:   threads,
		ffmpeg:    "ffmpeg",
	}, nil
}

// WithFFmpeg sets the ffmpeg binary used for non-WAV input. It is resolved
// on first use so WAV-only setups run without it.
func (w *WhisperCPP) WithFFmpeg(path string) *WhisperCPP {
	if path = strings.TrimSpace(path); path != "" {
		w.ffmpeg = path
	}
	return w
}

func (w *WhisperCPP) TranscribeFile(ctx context.Context, path string) (string, error) {
	outDir, err := os.MkdirTemp("", "whisper-out-*")
	if err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		wav := filepath.Join(outDir, "input.wav")
		if err := w.toWAV(ctx, path, wav); err != nil {
			return "", err
		}
		path = wav
	}

	outPrefix := filepath.Join(outDir, "out")
	args := []string{
		"-m", w.modelPath,
		"-f", path,
		"-l", w.language,
		"-otxt",
		"-of", outPrefix,
		"-nt",
	}
	if w.threads > 0 {
		args = append(args, "-t", strconv.Itoa(w.threads))
	}

	if err := runTool(ctx, w.cliPath, args); err != nil {
		return "", fmt.Errorf("whisper.cpp failed: %w", err)
	}

	text, err := os.ReadFile(outPrefix + ".txt")
	if err != nil {
		return "", fmt.Errorf("reading transcript: %w", err)
	}

	return strings.TrimSpace(string(text)), nil
}

func (w *WhisperCPP) toWAV(ctx context.Context, src, dst string) error {
	ffmpeg, err := exec.LookPath(w.ffmpeg)
	if err != nil {
		return fmt.Errorf("ffmpeg not found (%s), needed for %s input: %w", w.ffmpeg, filepath.Ext(src), err)
	}

	args := []string{
		"-nostdin", "-hide_banner", "-loglevel", "error", "-y",
		"-i", src,
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		dst,
	}
	if err := runTool(ctx, ffmpeg, args); err != nil {
		return fmt.Errorf("converting to wav: %w", err)
	}
	return nil
}

// runTool runs an external command and turns a failure into an error carrying
// the tail of its stderr.
func runTool(ctx context.Context, path string, args []string) error {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > maxStderr {
			detail = strings.TrimSpace(detail[len(detail)-maxStderr:])
		}
		if detail == "" {
			return err
		}
		return errors.New(detail)
	}
	return nil
}
