// Package notify mirrors the console cues as desktop notifications.
// Everything here is best-effort: a missing notification daemon must never
// break a dictation session.
package notify

import (
	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

const appTitle = "dictate"

// Desktop sends session milestones to the OS notification service.
type Desktop struct {
	log zerolog.Logger
}

// NewDesktop creates a desktop notifier.
func NewDesktop(log zerolog.Logger) *Desktop {
	return &Desktop{log: log}
}

func (d *Desktop) RecordingStarted() {
	d.send("Recording... release the key to transcribe.")
}

func (d *Desktop) Transcribing() {
	d.send("Transcribing...")
}

func (d *Desktop) SessionFailed(reason string) {
	d.send("Session failed: " + reason)
}

func (d *Desktop) send(body string) {
	if err := beeep.Notify(appTitle, body, ""); err != nil {
		d.log.Debug().Err(err).Msg("desktop notification failed")
	}
}

// Nop is a notifier that does nothing, used when notifications are disabled.
type Nop struct{}

func (Nop) RecordingStarted()           {}
func (Nop) Transcribing()               {}
func (Nop) SessionFailed(reason string) {}
