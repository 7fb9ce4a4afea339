package capture

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeDevice delivers a fixed number of frames, then blocks until stopped.
type fakeDevice struct {
	frame     []int16
	fill      int16
	maxReads  int
	reads     int
	stopped   chan struct{}
	delivered chan struct{} // closed once maxReads frames have been read
	closed    bool
}

func newFakeDevice(frame []int16, fill int16, maxReads int) *fakeDevice {
	return &fakeDevice{
		frame:     frame,
		fill:      fill,
		maxReads:  maxReads,
		stopped:   make(chan struct{}),
		delivered: make(chan struct{}),
	}
}

func (d *fakeDevice) Start() error { return nil }

func (d *fakeDevice) Read() error {
	if d.reads >= d.maxReads {
		<-d.stopped
		return errors.New("stream stopped")
	}
	for i := range d.frame {
		d.frame[i] = d.fill
	}
	d.reads++
	if d.reads == d.maxReads {
		close(d.delivered)
	}
	return nil
}

func (d *fakeDevice) Stop() error {
	select {
	case <-d.stopped:
	default:
		close(d.stopped)
	}
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func newTestRecorder(t *testing.T, maxReads int) (*Recorder, *[]*fakeDevice) {
	t.Helper()
	var devices []*fakeDevice
	open := func(sampleRate, frameSize int) (Device, []int16, error) {
		frame := make([]int16, frameSize)
		d := newFakeDevice(frame, 7, maxReads)
		devices = append(devices, d)
		return d, frame, nil
	}
	r := NewRecorderWithOpen(16000, 150*time.Millisecond, open, zerolog.Nop())
	return r, &devices
}

func TestRecorder_CaptureProportionalToHold(t *testing.T) {
	// 10 frames of 1024 samples = 640ms at 16kHz, well over the minimum hold.
	r, devices := newTestRecorder(t, 10)

	if err := r.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	<-(*devices)[0].delivered

	buf, err := r.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if got, want := len(buf.Samples), 10*frameSize; got != want {
		t.Errorf("samples = %d, want %d", got, want)
	}
	if buf.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", buf.SampleRate)
	}
	if buf.Duration() != 640*time.Millisecond {
		t.Errorf("Duration = %v, want 640ms", buf.Duration())
	}
	for i, s := range buf.Samples {
		if s != 7 {
			t.Fatalf("sample %d = %d, want 7", i, s)
		}
	}
}

func TestRecorder_ShortHoldDiscarded(t *testing.T) {
	// One frame = 64ms at 16kHz, under the 150ms minimum.
	r, devices := newTestRecorder(t, 1)

	if err := r.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	<-(*devices)[0].delivered

	_, err := r.End()
	if !errors.Is(err, ErrEmptyCapture) {
		t.Errorf("End error = %v, want ErrEmptyCapture", err)
	}
}

func TestRecorder_EndWithoutBegin(t *testing.T) {
	r, _ := newTestRecorder(t, 1)
	_, err := r.End()
	if !errors.Is(err, ErrEmptyCapture) {
		t.Errorf("End error = %v, want ErrEmptyCapture", err)
	}
}

func TestRecorder_BeginWhileRecordingIsNoop(t *testing.T) {
	r, devices := newTestRecorder(t, 5)

	if err := r.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := r.Begin(); err != nil {
		t.Fatalf("second Begin: %v", err)
	}
	if got := len(*devices); got != 1 {
		t.Errorf("devices opened = %d, want 1", got)
	}
	<-(*devices)[0].delivered
	if _, err := r.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}

func TestRecorder_DeviceUnavailable(t *testing.T) {
	open := func(sampleRate, frameSize int) (Device, []int16, error) {
		return nil, nil, errors.New("no such device")
	}
	r := NewRecorderWithOpen(16000, 150*time.Millisecond, open, zerolog.Nop())

	err := r.Begin()
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Begin error = %v, want ErrDeviceUnavailable", err)
	}
}

func TestRecorder_NoHandleLeakAcrossCycles(t *testing.T) {
	r, devices := newTestRecorder(t, 5)

	for cycle := 0; cycle < 3; cycle++ {
		if err := r.Begin(); err != nil {
			t.Fatalf("cycle %d Begin: %v", cycle, err)
		}
		<-(*devices)[cycle].delivered
		if _, err := r.End(); err != nil {
			t.Fatalf("cycle %d End: %v", cycle, err)
		}
	}

	if got := len(*devices); got != 3 {
		t.Fatalf("devices opened = %d, want 3", got)
	}
	for i, d := range *devices {
		if !d.closed {
			t.Errorf("device %d not closed", i)
		}
	}
}

func TestRecorder_CloseMidCapture(t *testing.T) {
	r, devices := newTestRecorder(t, 5)

	if err := r.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	<-(*devices)[0].delivered
	r.Close()

	if !(*devices)[0].closed {
		t.Error("device not closed after Close")
	}
	// Recorder is reusable after Close.
	if err := r.Begin(); err != nil {
		t.Fatalf("Begin after Close: %v", err)
	}
	<-(*devices)[1].delivered
	if _, err := r.End(); err != nil {
		t.Fatalf("End after Close: %v", err)
	}
}
