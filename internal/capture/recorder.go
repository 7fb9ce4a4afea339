package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrDeviceUnavailable indicates that no audio input device could be opened.
	ErrDeviceUnavailable = errors.New("no audio input device available")

	// ErrEmptyCapture indicates the hotkey was held for less than the minimum
	// duration and the capture was discarded.
	ErrEmptyCapture = errors.New("capture shorter than minimum hold")
)

// frameSize is the number of samples read from the device per Read call.
const frameSize = 1024

// Buffer is a finished mono PCM recording. Ownership moves to the caller when
// End returns; the recorder keeps no reference.
type Buffer struct {
	Samples    []int16
	SampleRate int
}

// Duration returns the length of the recording.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate == 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

// Device is a started-stopped audio input stream. Read fills the frame slice
// handed out at open time and blocks until a full frame is available.
type Device interface {
	Start() error
	Read() error
	Stop() error
	Close() error
}

// OpenFunc opens an input device at the given sample rate. The returned slice
// is the frame buffer that Read fills on each call.
type OpenFunc func(sampleRate, frameSize int) (Device, []int16, error)

// Recorder buffers microphone samples between Begin and End calls.
// It is driven by a single goroutine (the dictation controller); Begin and End
// must not be called concurrently.
type Recorder struct {
	sampleRate int
	minHold    time.Duration
	open       OpenFunc
	log        zerolog.Logger

	mu      sync.Mutex
	device  Device
	frame   []int16
	samples []int16
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewRecorder creates a recorder using the default PortAudio input device.
func NewRecorder(sampleRate int, minHold time.Duration, log zerolog.Logger) *Recorder {
	return NewRecorderWithOpen(sampleRate, minHold, openPortAudio, log)
}

// NewRecorderWithOpen creates a recorder with a custom device opener (used in tests).
func NewRecorderWithOpen(sampleRate int, minHold time.Duration, open OpenFunc, log zerolog.Logger) *Recorder {
	return &Recorder{
		sampleRate: sampleRate,
		minHold:    minHold,
		open:       open,
		log:        log,
	}
}

// Begin opens the input device and starts buffering samples.
// A Begin while already recording is a no-op.
func (r *Recorder) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.device != nil {
		r.log.Debug().Msg("recorder already running, ignoring begin")
		return nil
	}

	device, frame, err := r.open(r.sampleRate, frameSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if err := device.Start(); err != nil {
		device.Close()
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	r.device = device
	r.frame = frame
	r.samples = r.samples[:0]
	r.done = make(chan struct{})

	r.wg.Add(1)
	go r.pump(device, frame, r.done)

	r.log.Debug().Int("sample_rate", r.sampleRate).Msg("audio stream started")
	return nil
}

// pump reads frames from the device into the sample buffer until done closes.
func (r *Recorder) pump(device Device, frame []int16, done chan struct{}) {
	defer r.wg.Done()
	for {
		select {
		case <-done:
			return
		default:
		}

		if err := device.Read(); err != nil {
			select {
			case <-done:
				return
			default:
			}
			r.log.Warn().Err(err).Msg("audio read failed")
			continue
		}

		r.mu.Lock()
		r.samples = append(r.samples, frame...)
		r.mu.Unlock()
	}
}

// End stops buffering and returns the accumulated recording. The buffer is
// moved out: the recorder keeps nothing. Captures shorter than the minimum
// hold return ErrEmptyCapture.
func (r *Recorder) End() (Buffer, error) {
	r.mu.Lock()
	device := r.device
	done := r.done
	r.device = nil
	r.mu.Unlock()

	if device == nil {
		r.log.Debug().Msg("recorder not running, ignoring end")
		return Buffer{}, ErrEmptyCapture
	}

	// Signal the pump first, then stop the device so a Read blocked on it
	// returns and the pump can drain out.
	close(done)
	if err := device.Stop(); err != nil {
		r.log.Warn().Err(err).Msg("audio stream stop failed")
	}
	r.wg.Wait()

	if err := device.Close(); err != nil {
		r.log.Warn().Err(err).Msg("audio stream close failed")
	}

	r.mu.Lock()
	samples := r.samples
	r.samples = nil
	r.frame = nil
	r.mu.Unlock()

	minSamples := int(int64(r.sampleRate) * r.minHold.Milliseconds() / 1000)
	if len(samples) < minSamples {
		r.log.Debug().
			Int("samples", len(samples)).
			Int("min_samples", minSamples).
			Msg("capture below minimum hold, discarding")
		return Buffer{}, ErrEmptyCapture
	}

	buf := Buffer{Samples: samples, SampleRate: r.sampleRate}
	r.log.Debug().
		Int("samples", len(samples)).
		Dur("duration", buf.Duration()).
		Msg("capture finished")
	return buf, nil
}

// Close releases any open stream. Safe to call when idle.
func (r *Recorder) Close() {
	r.mu.Lock()
	device := r.device
	done := r.done
	r.device = nil
	r.samples = nil
	r.mu.Unlock()

	if device == nil {
		return
	}
	close(done)
	device.Stop()
	r.wg.Wait()
	device.Close()
}
