package transcribe

import (
	"fmt"
	"sort"

	"github.com/snarg/dictate/internal/config"
)

// Factory builds a provider from runtime configuration.
type Factory func(cfg *config.Config) (Provider, error)

var registry = map[string]Factory{
	"whisper": func(cfg *config.Config) (Provider, error) {
		return NewWhisperClient(cfg.WhisperURL, cfg.WhisperModel, cfg.Language, cfg.WhisperTimeout), nil
	},
	"elevenlabs": func(cfg *config.Config) (Provider, error) {
		if cfg.ElevenLabsAPIKey == "" {
			return nil, fmt.Errorf("elevenlabs provider requires ELEVENLABS_API_KEY")
		}
		return NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsModel, cfg.Language, cfg.WhisperTimeout), nil
	},
}

// Register adds a named provider factory. Later registrations replace earlier
// ones, which lets tests install fakes.
func Register(name string, f Factory) {
	registry[name] = f
}

// New builds the provider registered under name.
func New(name string, cfg *config.Config) (Provider, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (available: %v)", name, Names())
	}
	return f(cfg)
}

// Names returns the registered provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
