// Package hotkey turns the OS-global keyboard hook into a stream of discrete
// press/release events for one configured key. Keeping the hook behind a
// channel boundary means the dictation state machine never runs inside an OS
// callback and can be tested with synthetic events.
package hotkey

import (
	"sync"

	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog"
)

// Kind distinguishes press from release.
type Kind int

const (
	Press Kind = iota
	Release
)

func (k Kind) String() string {
	if k == Press {
		return "press"
	}
	return "release"
}

// Event is one hotkey edge. Auto-repeat key-down events while the key is held
// are delivered as additional Press events; consumers treat them as no-ops.
type Event struct {
	Kind Kind
}

// Listener delivers hotkey events. Close releases the OS hook; it is safe to
// call more than once.
type Listener interface {
	Events() <-chan Event
	Close()
}

// HookListener is the gohook-backed Listener. It owns the process-wide
// keyboard hook for its lifetime.
type HookListener struct {
	code   uint16
	events chan Event
	log    zerolog.Logger
	once   sync.Once
}

// NewHookListener installs the global hook and starts filtering for key.
func NewHookListener(key string, log zerolog.Logger) (*HookListener, error) {
	code, label, err := Lookup(key)
	if err != nil {
		return nil, err
	}

	l := &HookListener{
		code:   code,
		events: make(chan Event, 16),
		log:    log,
	}
	go l.run()

	log.Info().Str("hotkey", label).Msg("hotkey hook installed")
	return l, nil
}

// Events returns the event stream. The channel closes when the hook is
// released.
func (l *HookListener) Events() <-chan Event { return l.events }

// Close releases the OS hook exactly once.
func (l *HookListener) Close() {
	l.once.Do(func() {
		hook.End()
		l.log.Debug().Msg("hotkey hook released")
	})
}

func (l *HookListener) run() {
	raw := hook.Start()
	for ev := range raw {
		if ev.Keycode != l.code {
			continue
		}
		switch ev.Kind {
		case hook.KeyDown, hook.KeyHold:
			l.emit(Event{Kind: Press})
		case hook.KeyUp:
			l.emit(Event{Kind: Release})
		}
	}
	close(l.events)
}

// emit never blocks the hook goroutine. A full channel means the consumer is
// wedged; dropping is the lesser evil.
func (l *HookListener) emit(ev Event) {
	select {
	case l.events <- ev:
	default:
		l.log.Warn().Str("kind", ev.Kind.String()).Msg("hotkey event dropped, consumer not keeping up")
	}
}
