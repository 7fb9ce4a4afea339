// Package controller ties capture, transcription, and injection into the
// press-to-talk state machine. One session at a time: a press outside Idle is
// dropped, never queued.
package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/dictate/internal/capture"
	"github.com/snarg/dictate/internal/hotkey"
	"github.com/snarg/dictate/internal/metrics"
	"github.com/snarg/dictate/internal/transcribe"
)

// State is the controller's position in the session lifecycle.
type State int32

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
	StateInjecting
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	case StateInjecting:
		return "injecting"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// Recorder is the capture dependency (see internal/capture).
type Recorder interface {
	Begin() error
	End() (capture.Buffer, error)
	Close()
}

// Injector delivers a finished transcript (see internal/inject).
type Injector interface {
	Inject(text string) error
}

// Vocabulary supplies a stable phrase snapshot per session.
type Vocabulary interface {
	Snapshot() []string
}

// Notifier receives session milestones for user-facing cues.
type Notifier interface {
	RecordingStarted()
	Transcribing()
	SessionFailed(reason string)
}

// Options configures the controller. All dependencies are required except
// Notifier, which defaults to a no-op.
type Options struct {
	Listener     hotkey.Listener
	Recorder     Recorder
	Provider     transcribe.Provider
	Injector     Injector
	Vocab        Vocabulary
	Notifier     Notifier
	MaxNewTokens int
	Timeout      time.Duration // per-session inference deadline, 0 = none
	Log          zerolog.Logger
}

// Stats is a point-in-time snapshot for the status endpoint.
type Stats struct {
	State     string `json:"state"`
	Completed int64  `json:"completed"`
	Failed    int64  `json:"failed"`
	Discarded int64  `json:"discarded"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

// Controller runs the dictation state machine.
type Controller struct {
	opts Options
	log  zerolog.Logger

	state     atomic.Int32
	completed atomic.Int64
	failed    atomic.Int64
	discarded atomic.Int64

	// done carries the outcome of the in-flight session goroutine back to the
	// event loop. Buffered so the session never blocks on a shutting-down loop.
	done chan sessionOutcome
}

type sessionOutcome struct {
	failed bool
}

type nopNotifier struct{}

func (nopNotifier) RecordingStarted()    {}
func (nopNotifier) Transcribing()        {}
func (nopNotifier) SessionFailed(string) {}

// New creates a controller in the Idle state.
func New(opts Options) *Controller {
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	return &Controller{
		opts: opts,
		log:  opts.Log,
		done: make(chan sessionOutcome, 1),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}

// Stats returns session counters for the status endpoint.
func (c *Controller) Stats() Stats {
	return Stats{
		State:     c.State().String(),
		Completed: c.completed.Load(),
		Failed:    c.failed.Load(),
		Discarded: c.discarded.Load(),
		Provider:  c.opts.Provider.Name(),
		Model:     c.opts.Provider.Model(),
	}
}

// Run consumes hotkey events until ctx is canceled. On return the hotkey hook
// and the audio device are released. A session already past Recording when the
// cancellation arrives runs to completion; no new session starts after it.
func (c *Controller) Run(ctx context.Context) error {
	defer c.opts.Listener.Close()
	defer c.opts.Recorder.Close()

	events := c.opts.Listener.Events()
	var recordStart time.Time
	inFlight := false

	for {
		select {
		case <-ctx.Done():
			c.setState(StateShuttingDown)
			if inFlight {
				c.log.Info().Msg("waiting for in-flight session to finish")
				c.tally(<-c.done)
				c.setState(StateShuttingDown)
			}
			c.log.Info().
				Int64("completed", c.completed.Load()).
				Int64("failed", c.failed.Load()).
				Int64("discarded", c.discarded.Load()).
				Msg("dictation controller stopped")
			return nil

		case ev, ok := <-events:
			if !ok {
				c.setState(StateShuttingDown)
				if inFlight {
					c.tally(<-c.done)
				}
				return errors.New("hotkey hook closed unexpectedly")
			}
			switch ev.Kind {
			case hotkey.Press:
				// Auto-repeat presses while held return the zero time and
				// must not clobber the original press timestamp.
				if t := c.onPress(); !t.IsZero() {
					recordStart = t
				}
			case hotkey.Release:
				// A release dropped while a session is already in flight must
				// not erase the in-flight record, or shutdown would skip the
				// wait for that session.
				if c.onRelease(recordStart) {
					inFlight = true
				}
			}

		case out := <-c.done:
			inFlight = false
			c.tally(out)
			c.setState(StateIdle)
		}
	}
}

// onPress starts a capture if idle. Presses in any other state are dropped:
// auto-repeat while recording, and new attempts while a session is in flight.
func (c *Controller) onPress() time.Time {
	if s := c.State(); s != StateIdle {
		c.log.Debug().Stringer("state", s).Msg("hotkey press ignored")
		return time.Time{}
	}

	if err := c.opts.Recorder.Begin(); err != nil {
		c.log.Error().Err(err).Msg("could not start recording")
		c.failed.Add(1)
		metrics.SessionsTotal.WithLabelValues("failed").Inc()
		c.opts.Notifier.SessionFailed("microphone unavailable")
		return time.Time{}
	}

	c.setState(StateRecording)
	c.opts.Notifier.RecordingStarted()
	c.log.Info().Msg("recording, release the key to transcribe")
	return time.Now()
}

// onRelease finishes the capture and hands the session to its own goroutine.
// Returns whether a session is now in flight.
func (c *Controller) onRelease(recordStart time.Time) bool {
	if s := c.State(); s != StateRecording {
		c.log.Debug().Stringer("state", s).Msg("hotkey release ignored")
		return false
	}

	buf, err := c.opts.Recorder.End()
	if err != nil {
		c.setState(StateIdle)
		if errors.Is(err, capture.ErrEmptyCapture) {
			// Accidental tap, not worth a user-visible error.
			c.discarded.Add(1)
			metrics.SessionsTotal.WithLabelValues("discarded").Inc()
			c.log.Debug().Msg("capture too short, discarded")
			return false
		}
		c.failed.Add(1)
		metrics.SessionsTotal.WithLabelValues("failed").Inc()
		c.log.Error().Err(err).Msg("could not finish recording")
		return false
	}

	metrics.CaptureDuration.Observe(buf.Duration().Seconds())

	// The vocabulary snapshot is taken here, not in the session goroutine, so
	// a concurrent edit cannot tear the request.
	vocabulary := c.opts.Vocab.Snapshot()

	c.setState(StateTranscribing)
	c.opts.Notifier.Transcribing()
	c.log.Info().Dur("capture", buf.Duration()).Msg("transcribing")

	go c.session(buf, vocabulary, recordStart)
	return true
}

// session runs transcribe→inject off the event-loop path, so the hotkey
// listener stays responsive while inference is in flight. Deliberately not
// bound to the run context: an in-flight session survives shutdown.
func (c *Controller) session(buf capture.Buffer, vocabulary []string, recordStart time.Time) {
	provider := c.opts.Provider

	wav, err := capture.EncodeWAV(buf)
	if err != nil {
		c.log.Error().Err(err).Msg("could not encode capture")
		c.done <- sessionOutcome{failed: true}
		return
	}

	ctx := context.Background()
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	decodeStart := time.Now()
	resp, err := provider.Transcribe(ctx, transcribe.Request{
		WAV:          wav,
		SampleRate:   buf.SampleRate,
		Vocabulary:   vocabulary,
		MaxNewTokens: c.opts.MaxNewTokens,
	})
	decodeDur := time.Since(decodeStart)
	metrics.TranscribeDuration.WithLabelValues(provider.Name()).Observe(decodeDur.Seconds())

	if err != nil {
		c.log.Error().Err(err).
			Str("provider", provider.Name()).
			Str("model", provider.Model()).
			Msg("transcription failed")
		c.opts.Notifier.SessionFailed("transcription failed")
		c.done <- sessionOutcome{failed: true}
		return
	}

	c.setState(StateInjecting)
	if err := c.opts.Injector.Inject(resp.Text); err != nil {
		// The transcript is already on the console; the session still counts.
		c.log.Error().Err(err).Msg("injection failed, transcript available on console")
	}

	c.log.Info().
		Dur("capture", buf.Duration()).
		Dur("decode", decodeDur).
		Dur("total", time.Since(recordStart)).
		Int("chars", len(resp.Text)).
		Msg("session complete")
	c.done <- sessionOutcome{}
}

func (c *Controller) tally(out sessionOutcome) {
	if out.failed {
		c.failed.Add(1)
		metrics.SessionsTotal.WithLabelValues("failed").Inc()
		return
	}
	c.completed.Add(1)
	metrics.SessionsTotal.WithLabelValues("completed").Inc()
}
