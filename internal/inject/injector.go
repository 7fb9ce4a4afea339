package inject

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/dictate/internal/metrics"
)

// Clipboard abstracts the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// Keyboard sends synthetic keystrokes to the focused application.
type Keyboard interface {
	Paste() error           // the platform paste chord
	Type(text string) error // per-character typing fallback
}

// Injector delivers transcripts to the focused application. Strategy, first
// success wins: clipboard + paste chord, then simulated keystrokes. The text
// is always echoed to the console as a durable record, whatever happens.
type Injector struct {
	clipboard Clipboard
	keyboard  Keyboard
	out       io.Writer
	settle    time.Duration // wait for the OS to register the clipboard write
	log       zerolog.Logger
}

// New creates an injector using the system clipboard and keyboard.
func New(log zerolog.Logger) *Injector {
	return &Injector{
		clipboard: systemClipboard{},
		keyboard:  newSystemKeyboard(log),
		out:       os.Stdout,
		settle:    50 * time.Millisecond,
		log:       log,
	}
}

// NewWithBackends creates an injector with explicit backends (used in tests).
func NewWithBackends(clipboard Clipboard, keyboard Keyboard, out io.Writer, log zerolog.Logger) *Injector {
	return &Injector{
		clipboard: clipboard,
		keyboard:  keyboard,
		out:       out,
		log:       log,
	}
}

// Inject delivers text at the current cursor focus. Empty text is echoed but
// never injected; firing a paste chord with nothing useful on the clipboard
// would still disturb the focused application.
func (inj *Injector) Inject(text string) error {
	fmt.Fprintln(inj.out, text)

	if text == "" {
		return nil
	}

	if err := inj.pasteViaClipboard(text); err != nil {
		inj.log.Debug().Err(err).Msg("clipboard paste failed, falling back to typing")
		metrics.InjectionFallbacksTotal.Inc()
		if err := inj.keyboard.Type(text); err != nil {
			return fmt.Errorf("injection failed (clipboard and keystroke paths): %w", err)
		}
	}
	return nil
}

func (inj *Injector) pasteViaClipboard(text string) error {
	orig, origErr := inj.clipboard.ReadAll()

	if err := inj.clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	if inj.settle > 0 {
		time.Sleep(inj.settle)
	}

	if err := inj.keyboard.Paste(); err != nil {
		return fmt.Errorf("paste chord: %w", err)
	}

	// Put the user's clipboard back once the paste has landed.
	if origErr == nil {
		if inj.settle > 0 {
			time.Sleep(inj.settle)
		}
		if err := inj.clipboard.WriteAll(orig); err != nil {
			inj.log.Debug().Err(err).Msg("clipboard restore failed")
		}
	}
	return nil
}
