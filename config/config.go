package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Coach         CoachConfig         `yaml:"coach"`
	Completion    CompletionConfig    `yaml:"completion"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Synthesis     SynthesisConfig     `yaml:"synthesis"`
	Live          LiveConfig          `yaml:"live"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Log           LogConfig           `yaml:"log"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// RateLimit is requests per minute per client; 0 disables it.
	RateLimit int `yaml:"rate_limit"`

	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

func (s ServerConfig) ReadTimeoutDuration() time.Duration     { return s.readTimeout }
func (s ServerConfig) WriteTimeoutDuration() time.Duration    { return s.writeTimeout }
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration { return s.shutdownTimeout }

type CoachConfig struct {
	SystemPrompt string `yaml:"system_prompt"`
}

type CompletionConfig struct {
	Provider  string `yaml:"provider"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

type TranscriptionConfig struct {
	Engine     string `yaml:"engine"`
	WhisperCLI string `yaml:"whisper_cli"`
	ModelPath  string `yaml:"model_path"`
	Threads    int    `yaml:"threads"`
	FFmpeg     string `yaml:"ffmpeg"`
	Language   string `yaml:"language"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
}

type SynthesisConfig struct {
	Engine  string `yaml:"engine"`
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Voice   string `yaml:"voice"`
}

type LiveConfig struct {
	Source           string  `yaml:"source"`
	SampleRate       int     `yaml:"sample_rate"`
	BlockDuration    string  `yaml:"block_duration"`
	Pause            string  `yaml:"pause"`
	SilenceThreshold float64 `yaml:"silence_threshold"`
	QueueSize        int     `yaml:"queue_size"`
	FileDir          string  `yaml:"file_dir"`
	FileWatch        bool    `yaml:"file_watch"`
	OutputDir        string  `yaml:"output_dir"`

	blockDuration time.Duration
	pause         time.Duration
}

func (l LiveConfig) BlockDurationValue() time.Duration { return l.blockDuration }
func (l LiveConfig) PauseValue() time.Duration         { return l.pause }

type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env (if present) into the environment, then the YAML file at
// path with ${VAR} references expanded. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "30s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "120s"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}

	if c.Completion.Provider == "" {
		c.Completion.Provider = "groq"
	}
	if c.Completion.APIKey == "" {
		switch c.Completion.Provider {
		case "anthropic":
			c.Completion.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "gemini":
			c.Completion.APIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			c.Completion.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			c.Completion.APIKey = os.Getenv("GROQ_API_KEY")
		}
	}
	if c.Completion.MaxTokens == 0 {
		c.Completion.MaxTokens = 150
	}

	if c.Transcription.Engine == "" {
		c.Transcription.Engine = "whisper-cli"
	}
	if c.Transcription.WhisperCLI == "" {
		c.Transcription.WhisperCLI = "whisper-cli"
	}
	if c.Transcription.FFmpeg == "" {
		c.Transcription.FFmpeg = "ffmpeg"
	}
	if c.Transcription.ModelPath == "" {
		c.Transcription.ModelPath = "./models/ggml-base.bin"
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "en"
	}
	if c.Transcription.APIKey == "" {
		c.Transcription.APIKey = os.Getenv("GROQ_API_KEY")
	}

	if c.Synthesis.Engine == "" {
		c.Synthesis.Engine = "coqui"
	}
	if c.Synthesis.URL == "" {
		c.Synthesis.URL = "http://localhost:5002"
	}
	if c.Synthesis.APIKey == "" {
		c.Synthesis.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if c.Live.Source == "" {
		c.Live.Source = "microphone"
	}
	if c.Live.SampleRate == 0 {
		c.Live.SampleRate = 16000
	}
	if c.Live.BlockDuration == "" {
		c.Live.BlockDuration = "200ms"
	}
	if c.Live.Pause == "" {
		c.Live.Pause = "3s"
	}
	if c.Live.SilenceThreshold == 0 {
		c.Live.SilenceThreshold = 0.01
	}
	if c.Live.QueueSize == 0 {
		c.Live.QueueSize = 1024
	}
	if c.Live.FileDir == "" {
		c.Live.FileDir = "./audio"
	}
	if c.Live.OutputDir == "" {
		c.Live.OutputDir = "./replies"
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "interview_coach"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	var err error

	switch c.Completion.Provider {
	case "groq", "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("unknown completion provider %q", c.Completion.Provider)
	}
	if c.Completion.APIKey == "" {
		return fmt.Errorf("completion api key is required (set completion.api_key or the provider's API key variable)")
	}
	if c.Completion.MaxTokens < 0 {
		return fmt.Errorf("completion.max_tokens must not be negative")
	}

	switch c.Transcription.Engine {
	case "whisper-cli", "openai":
	default:
		return fmt.Errorf("unknown transcription engine %q", c.Transcription.Engine)
	}

	switch c.Synthesis.Engine {
	case "coqui", "openai":
	default:
		return fmt.Errorf("unknown synthesis engine %q", c.Synthesis.Engine)
	}

	switch c.Live.Source {
	case "microphone", "file":
	default:
		return fmt.Errorf("unknown live source %q", c.Live.Source)
	}

	if c.Server.readTimeout, err = positiveDuration("server.read_timeout", c.Server.ReadTimeout); err != nil {
		return err
	}
	if c.Server.writeTimeout, err = positiveDuration("server.write_timeout", c.Server.WriteTimeout); err != nil {
		return err
	}
	if c.Server.shutdownTimeout, err = positiveDuration("server.shutdown_timeout", c.Server.ShutdownTimeout); err != nil {
		return err
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}

	if c.Live.blockDuration, err = positiveDuration("live.block_duration", c.Live.BlockDuration); err != nil {
		return err
	}
	if c.Live.pause, err = positiveDuration("live.pause", c.Live.Pause); err != nil {
		return err
	}
	if c.Live.SampleRate < 0 {
		return fmt.Errorf("live.sample_rate must be positive")
	}
	if c.Live.SilenceThreshold < 0 || c.Live.SilenceThreshold >= 1 {
		return fmt.Errorf("live.silence_threshold must be in (0, 1), got %v", c.Live.SilenceThreshold)
	}
	if c.Live.QueueSize < 0 {
		return fmt.Errorf("live.queue_size must be positive")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}
