package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Provider     string `env:"PROVIDER" envDefault:"whisper"`
	Hotkey       string `env:"HOTKEY" envDefault:"f8"`
	SampleRate   int    `env:"SAMPLE_RATE" envDefault:"16000"`
	MaxNewTokens int    `env:"MAX_NEW_TOKENS" envDefault:"128"`
	Language     string `env:"LANGUAGE" envDefault:"en"`

	// Minimum hold duration before a capture counts as real speech.
	MinHold time.Duration `env:"MIN_HOLD" envDefault:"150ms"`

	WhisperURL     string        `env:"WHISPER_URL" envDefault:"http://127.0.0.1:8000/v1/audio/transcriptions"`
	WhisperModel   string        `env:"WHISPER_MODEL" envDefault:"Systran/faster-whisper-small"`
	WhisperTimeout time.Duration `env:"WHISPER_TIMEOUT" envDefault:"60s"`

	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsModel  string `env:"ELEVENLABS_MODEL" envDefault:"scribe_v1"`

	VocabFile string `env:"VOCAB_FILE" envDefault:"vocab.toml"`

	UIEnabled    bool          `env:"UI_ENABLED" envDefault:"false"`
	UIAddr       string        `env:"UI_ADDR" envDefault:"127.0.0.1:8765"`
	ReadTimeout  time.Duration `env:"UI_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"UI_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"UI_IDLE_TIMEOUT" envDefault:"120s"`

	Notifications bool   `env:"NOTIFICATIONS" envDefault:"false"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile      string
	Provider     string
	Hotkey       string
	SampleRate   int
	MaxNewTokens int
	VocabFile    string
	UIEnabled    bool
	UIAddr       string
	LogLevel     string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	// Parse environment variables into config struct
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Apply CLI overrides (non-empty values win)
	if overrides.Provider != "" {
		cfg.Provider = overrides.Provider
	}
	if overrides.Hotkey != "" {
		cfg.Hotkey = overrides.Hotkey
	}
	if overrides.SampleRate > 0 {
		cfg.SampleRate = overrides.SampleRate
	}
	if overrides.MaxNewTokens > 0 {
		cfg.MaxNewTokens = overrides.MaxNewTokens
	}
	if overrides.VocabFile != "" {
		cfg.VocabFile = overrides.VocabFile
	}
	if overrides.UIEnabled {
		cfg.UIEnabled = true
	}
	if overrides.UIAddr != "" {
		cfg.UIAddr = overrides.UIAddr
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}

	return cfg, nil
}
