package tts

import (
	"context"
	"fmt"

	"jarvis/internal/config"
)

type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// New picks the engine named in cfg.
func New(cfg config.TTS) (Speaker, error) {
	switch cfg.Engine {
	case "", "espeak":
		return NewEspeak(cfg.Voice), nil
	case "piper":
		return NewPiper(cfg.PiperBinary, cfg.PiperModel, cfg.Speaker), nil
	}
	return nil, fmt.Errorf("unknown tts engine %q", cfg.Engine)
}
