package transcribe

import (
	"context"
	"errors"
)

var (
	// ErrModelNotLoaded indicates the transcription backend is unreachable or
	// has not finished loading its model.
	ErrModelNotLoaded = errors.New("transcription model not loaded")

	// ErrTimeout indicates inference did not finish within the configured deadline.
	ErrTimeout = errors.New("transcription timed out")
)

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req Request) (*Response, error)
	Name() string  // "whisper", "elevenlabs"
	Model() string // model identifier for logs
}

// Warmer is implemented by providers that benefit from a warm-up call at
// startup so the first real session does not pay model-load latency.
type Warmer interface {
	Warm(ctx context.Context) error
}

// Request is one finished capture handed to a provider. It is immutable once
// built: the audio is a private copy and the vocabulary is a snapshot.
type Request struct {
	WAV          []byte // 16-bit mono PCM WAV
	SampleRate   int
	Vocabulary   []string // phrases to bias recognition toward
	MaxNewTokens int      // 0 = provider default
}

// Response is the common transcription result from any provider.
type Response struct {
	Text     string
	Language string
	Duration float64 // audio duration in seconds, 0 if not reported
}
