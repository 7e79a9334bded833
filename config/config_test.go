package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"interview-coach/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Addr != ":8000" {
		t.Errorf("addr: got %q", cfg.Server.Addr)
	}
	if cfg.Completion.Provider != "groq" || cfg.Completion.APIKey != "gsk-test" {
		t.Errorf("completion: got %+v", cfg.Completion)
	}
	if cfg.Completion.MaxTokens != 150 {
		t.Errorf("max tokens: got %d", cfg.Completion.MaxTokens)
	}
	if cfg.Transcription.FFmpeg != "ffmpeg" {
		t.Errorf("ffmpeg: got %q", cfg.Transcription.FFmpeg)
	}
	if cfg.Live.SampleRate != 16000 || cfg.Live.SilenceThreshold != 0.01 {
		t.Errorf("live: got %+v", cfg.Live)
	}
	if cfg.Live.BlockDurationValue() != 200*time.Millisecond || cfg.Live.PauseValue() != 3*time.Second {
		t.Errorf("live durations: %s, %s", cfg.Live.BlockDurationValue(), cfg.Live.PauseValue())
	}
	if cfg.Server.ShutdownTimeoutDuration() != 10*time.Second {
		t.Errorf("shutdown timeout: got %s", cfg.Server.ShutdownTimeoutDuration())
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("COACH_KEY", "from-env")

	path := writeConfig(t, `
server:
  addr: ":9090"
  rate_limit: 30
completion:
  api_key: ${COACH_KEY}
  model: llama-3.1-8b-instant
live:
  source: file
  pause: 1500ms
log:
  format: json
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Completion.APIKey != "from-env" {
		t.Errorf("api key: got %q", cfg.Completion.APIKey)
	}
	if cfg.Completion.Model != "llama-3.1-8b-instant" {
		t.Errorf("model: got %q", cfg.Completion.Model)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.RateLimit != 30 {
		t.Errorf("server: got %+v", cfg.Server)
	}
	if cfg.Live.Source != "file" || cfg.Live.PauseValue() != 1500*time.Millisecond {
		t.Errorf("live: got %+v", cfg.Live)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log format: got %q", cfg.Log.Format)
	}
}

func TestLoad_AnthropicKeyFallback(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := config.Load(writeConfig(t, "completion:\n  provider: anthropic\n"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Completion.APIKey != "sk-ant-test" {
		t.Errorf("api key: got %q", cfg.Completion.APIKey)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		body    string
		wantErr string
	}{
		{name: "missing key", body: "log:\n  level: debug\n", wantErr: "api key is required"},
		{name: "unknown provider", env: "k", body: "completion:\n  provider: bard\n", wantErr: "unknown completion provider"},
		{name: "bad duration", env: "k", body: "live:\n  pause: soon\n", wantErr: "live.pause"},
		{name: "negative max tokens", env: "k", body: "completion:\n  max_tokens: -5\n", wantErr: "max_tokens must not be negative"},
		{name: "negative rate limit", env: "k", body: "server:\n  rate_limit: -1\n", wantErr: "rate_limit"},
		{name: "unknown source", env: "k", body: "live:\n  source: bluetooth\n", wantErr: "unknown live source"},
		{name: "bad yaml", env: "k", body: "server: [", wantErr: "parsing config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GROQ_API_KEY", tt.env)

			_, err := config.Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
