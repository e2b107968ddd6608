package notify

import (
	"context"
	log "log/slog"

	"github.com/gen2brain/beeep"

	"jarvis/internal/player"
)

const AppName = "Jarvis"

// Beep plays the cue sound at path.
func Beep(ctx context.Context, path string) error {
	return player.Play(ctx, path)
}

// Desktop shows a desktop notification.
func Desktop(message string) error {
	return beeep.Notify(AppName, message, "")
}

// Cue announces that Jarvis is about to listen. Either part may be off;
// failures are logged and never stop the turn.
type Cue struct {
	Sound   string // "" disables the beep
	Desktop bool

	beep   func(ctx context.Context, path string) error
	notify func(message string) error
}

func NewCue(sound string, desktop bool) *Cue {
	return &Cue{Sound: sound, Desktop: desktop, beep: Beep, notify: Desktop}
}

func (c *Cue) Listening(ctx context.Context) {
	if c.Desktop {
		if err := c.notify("Listening..."); err != nil {
			log.Debug("Desktop notification failed", "err", err)
		}
	}
	if c.Sound != "" {
		if err := c.beep(ctx, c.Sound); err != nil {
			log.Warn("Failed to play cue", "sound", c.Sound, "err", err)
		}
	}
}
