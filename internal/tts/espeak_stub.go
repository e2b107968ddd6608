//go:build noespeak

package tts

import (
	"context"
	"errors"
)

var errNoEspeak = errors.New("built without espeak-ng (noespeak tag)")

type Espeak struct {
	Voice string
}

func NewEspeak(voice string) *Espeak {
	return &Espeak{Voice: voice}
}

func (e *Espeak) Speak(context.Context, string) error {
	return errNoEspeak
}
