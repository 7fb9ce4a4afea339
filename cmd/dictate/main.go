package main

import (
	"context"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	dictate "github.com/snarg/dictate"
	"github.com/snarg/dictate/internal/api"
	"github.com/snarg/dictate/internal/capture"
	"github.com/snarg/dictate/internal/config"
	"github.com/snarg/dictate/internal/controller"
	"github.com/snarg/dictate/internal/hotkey"
	"github.com/snarg/dictate/internal/inject"
	"github.com/snarg/dictate/internal/notify"
	"github.com/snarg/dictate/internal/transcribe"
	"github.com/snarg/dictate/internal/vocab"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var overrides config.Overrides
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file (default .env)")
	flag.StringVar(&overrides.Provider, "provider", "", "transcription provider (whisper, elevenlabs)")
	flag.StringVar(&overrides.Hotkey, "hotkey", "", "push-to-talk key (default f8)")
	flag.IntVar(&overrides.SampleRate, "sample-rate", 0, "capture sample rate in Hz")
	flag.IntVar(&overrides.MaxNewTokens, "max-new-tokens", 0, "decode length cap sent to the provider")
	flag.StringVar(&overrides.VocabFile, "vocab", "", "path to vocabulary TOML file")
	flag.BoolVar(&overrides.UIEnabled, "ui", false, "serve the local control panel")
	flag.StringVar(&overrides.UIAddr, "ui-addr", "", "control panel listen address")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Str("hotkey", cfg.Hotkey).Str("provider", cfg.Provider).Msg("dictate starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Transcription provider
	provider, err := transcribe.New(cfg.Provider, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build transcription provider")
	}
	if w, ok := provider.(transcribe.Warmer); ok {
		if err := w.Warm(ctx); err != nil {
			log.Warn().Err(err).Str("provider", provider.Name()).Msg("provider warm-up failed, continuing")
		}
	}

	// Vocabulary
	vocabLog := log.With().Str("component", "vocab").Logger()
	store := vocab.NewStore(cfg.VocabFile, vocabLog)
	if err := store.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to load vocabulary")
	}
	go func() {
		if err := store.Watch(ctx); err != nil {
			vocabLog.Warn().Err(err).Msg("vocabulary watcher stopped")
		}
	}()

	// Capture and injection
	recorder := capture.NewRecorder(cfg.SampleRate, cfg.MinHold, log.With().Str("component", "capture").Logger())
	injector := inject.New(log.With().Str("component", "inject").Logger())

	// Hotkey hook
	listener, err := hotkey.NewHookListener(cfg.Hotkey, log.With().Str("component", "hotkey").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to install hotkey hook")
	}

	var notifier controller.Notifier = notify.Nop{}
	if cfg.Notifications {
		notifier = notify.NewDesktop(log.With().Str("component", "notify").Logger())
	}

	ctrl := controller.New(controller.Options{
		Listener:     listener,
		Recorder:     recorder,
		Provider:     provider,
		Injector:     injector,
		Vocab:        store,
		Notifier:     notifier,
		MaxNewTokens: cfg.MaxNewTokens,
		Timeout:      cfg.WhisperTimeout,
		Log:          log.With().Str("component", "controller").Logger(),
	})

	// Control panel (optional)
	var srv *api.Server
	errCh := make(chan error, 1)
	if cfg.UIEnabled {
		webFS, err := fs.Sub(dictate.WebFiles, "web")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open embedded web assets")
		}
		httpLog := log.With().Str("component", "http").Logger()
		srv = api.NewServer(cfg, ctrl, store, webFS, version, startTime, httpLog)
		go func() {
			errCh <- srv.Start()
		}()
	}

	// Run the dictation loop until signal or server error
	runErr := make(chan error, 1)
	go func() {
		runErr <- ctrl.Run(ctx)
	}()

	select {
	case err := <-runErr:
		if err != nil {
			log.Error().Err(err).Msg("controller stopped")
		}
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
		stop()
		if err := <-runErr; err != nil {
			log.Error().Err(err).Msg("controller stopped")
		}
	}

	// Graceful shutdown with 10s timeout
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http server shutdown error")
		}
	}

	log.Info().Msg("dictate stopped")
}
