package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// paDevice wraps a PortAudio input stream. Initialize/Terminate are reference
// counted by the binding, so each open pairs its own Terminate with Close.
type paDevice struct {
	stream *portaudio.Stream
}

func openPortAudio(sampleRate, frameSize int) (Device, []int16, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("portaudio init: %w", err)
	}

	frame := make([]int16, frameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(frame), frame)
	if err != nil {
		portaudio.Terminate()
		return nil, nil, fmt.Errorf("open input stream: %w", err)
	}

	return &paDevice{stream: stream}, frame, nil
}

func (d *paDevice) Start() error { return d.stream.Start() }
func (d *paDevice) Read() error  { return d.stream.Read() }
func (d *paDevice) Stop() error  { return d.stream.Stop() }

func (d *paDevice) Close() error {
	err := d.stream.Close()
	portaudio.Terminate()
	return err
}
