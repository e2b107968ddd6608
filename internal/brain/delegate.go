package brain

import (
	"context"
	"fmt"
	"strings"
)

const Persona = `
You are Jarvis, a calm, intelligent, polite personal AI assistant.
You help Swanand with daily tasks, learning, planning, and system control.
Be concise, helpful, and human-like.
`

// MemoryWindow is how many past turns go into a prompt.
const MemoryWindow = 5

type Exchange struct {
	User   string `json:"user"`
	Jarvis string `json:"jarvis"`
}

// Prompt is the payload handed to a text generation service.
type Prompt struct {
	System string     `json:"system"`
	Memory []Exchange `json:"memory"`
	User   string     `json:"user"`
}

// Generator is a text generation service with one synchronous call.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Delegate hands every input to a Generator.
type Delegate struct {
	gen     Generator
	persona string
}

func NewDelegate(gen Generator, persona string) *Delegate {
	if persona == "" {
		persona = Persona
	}
	return &Delegate{gen: gen, persona: persona}
}

func (d *Delegate) Think(ctx context.Context, input string, mc Context) (string, error) {
	recent := mc.Recent(MemoryWindow)
	mem := make([]Exchange, 0, len(recent))
	for _, t := range recent {
		mem = append(mem, Exchange{User: t.User, Jarvis: t.Jarvis})
	}

	out, err := d.gen.Generate(ctx, Prompt{
		System: d.persona,
		Memory: mem,
		User:   input,
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyReply
	}

	return out, nil
}
