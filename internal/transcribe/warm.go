package transcribe

import (
	"time"

	"github.com/snarg/dictate/internal/capture"
)

// silentWAV builds an all-zero mono recording of the given length, used as a
// throwaway warm-up payload.
func silentWAV(sampleRate int, d time.Duration) ([]byte, error) {
	n := int(int64(sampleRate) * d.Milliseconds() / 1000)
	return capture.EncodeWAV(capture.Buffer{
		Samples:    make([]int16, n),
		SampleRate: sampleRate,
	})
}
