package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"jarvis/internal/player"
)

// Piper synthesises with the piper CLI into a temp WAV and plays it.
type Piper struct {
	Binary  string
	Model   string
	Speaker int

	play func(ctx context.Context, path string) error
}

func NewPiper(binary, model string, speaker int) *Piper {
	if binary == "" {
		binary = "piper"
	}
	return &Piper{Binary: binary, Model: model, Speaker: speaker, play: player.Play}
}

func (p *Piper) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	out, err := os.CreateTemp("", "jarvis-tts-*.wav")
	if err != nil {
		return fmt.Errorf("create tts file: %w", err)
	}
	out.Close()
	defer os.Remove(out.Name())

	if err := p.synth(ctx, text, out.Name()); err != nil {
		return err
	}
	return p.play(ctx, out.Name())
}

func (p *Piper) synth(ctx context.Context, text, path string) error {
	cmd := exec.CommandContext(ctx, p.Binary,
		"--model", p.Model,
		"--speaker", strconv.Itoa(p.Speaker),
		"--output_file", path,
	)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("piper: %w: %s", err, msg)
		}
		return fmt.Errorf("piper: %w", err)
	}
	return nil
}
