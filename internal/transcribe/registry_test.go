package transcribe

import (
	"strings"
	"testing"
	"time"

	"github.com/snarg/dictate/internal/config"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{
		WhisperURL:     "http://127.0.0.1:8000/v1/audio/transcriptions",
		WhisperModel:   "faster-whisper-small",
		WhisperTimeout: 30 * time.Second,
	}

	t.Run("whisper", func(t *testing.T) {
		p, err := New("whisper", cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if p.Name() != "whisper" {
			t.Errorf("Name = %q, want whisper", p.Name())
		}
		if p.Model() != "faster-whisper-small" {
			t.Errorf("Model = %q, want faster-whisper-small", p.Model())
		}
	})

	t.Run("elevenlabs_requires_api_key", func(t *testing.T) {
		_, err := New("elevenlabs", cfg)
		if err == nil {
			t.Fatal("expected error without API key")
		}
	})

	t.Run("elevenlabs", func(t *testing.T) {
		withKey := *cfg
		withKey.ElevenLabsAPIKey = "xi-test"
		withKey.ElevenLabsModel = "scribe_v1"
		p, err := New("elevenlabs", &withKey)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if p.Name() != "elevenlabs" {
			t.Errorf("Name = %q, want elevenlabs", p.Name())
		}
	})

	t.Run("unknown_lists_available", func(t *testing.T) {
		_, err := New("nope", cfg)
		if err == nil {
			t.Fatal("expected error for unknown provider")
		}
		for _, want := range []string{"whisper", "elevenlabs"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not list %q", err, want)
			}
		}
	})
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) < 2 {
		t.Fatalf("Names = %v, want at least whisper and elevenlabs", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Names not sorted: %v", names)
		}
	}
}
