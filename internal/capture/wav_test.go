package capture

import (
	"bytes"
	"testing"

	"github.com/go-audio/wav"
)

func TestEncodeWAV(t *testing.T) {
	buf := Buffer{
		Samples:    []int16{0, 100, -100, 32767, -32768},
		SampleRate: 16000,
	}

	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("EncodeWAV returned empty data")
	}
	if string(data[:4]) != "RIFF" {
		t.Errorf("header = %q, want RIFF", data[:4])
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		t.Fatal("decoder rejected encoded file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if got, want := len(pcm.Data), len(buf.Samples); got != want {
		t.Fatalf("decoded samples = %d, want %d", got, want)
	}
	for i, s := range buf.Samples {
		if pcm.Data[i] != int(s) {
			t.Errorf("sample %d = %d, want %d", i, pcm.Data[i], s)
		}
	}
	if dec.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", dec.SampleRate)
	}
}
