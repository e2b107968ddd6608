package jarvis

import (
	"context"
	"fmt"
	log "log/slog"
	"slices"
	"strings"
	"time"

	"jarvis/internal/apps"
	"jarvis/internal/brain"
	"jarvis/internal/memory"
)

const (
	ReplySessionEnded = "Session ended"
	ReplyOpenedApp    = "Opened application"
	ReplyConfused     = brain.ReplyConfused
)

var (
	greetings = []string{"hi", "hello", "hey jarvis", "hi jarvis"}
	farewells = []string{"bye", "bye jarvis", "exit", "quit", "stop jarvis"}
	fillers   = []string{"um", "uh", "hmm", "noise"}
)

type Listener interface {
	Listen(ctx context.Context) ([]float32, error)
}

// Voice is the speech pipeline as the loop sees it.
type Voice interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
	Say(ctx context.Context, text string) error
	SayShort(ctx context.Context, text string) error
}

type Memory interface {
	Load() memory.Record
	Save(input, response string) error
}

type Launcher interface {
	Match(command string) (apps.Entry, bool)
	Launch(ctx context.Context, e apps.Entry) error
}

// Cue tells the user that Jarvis is about to listen.
type Cue interface {
	Listening(ctx context.Context)
}

type Publisher interface {
	PublishTurn(ctx context.Context, heard, reply string) error
}

type Deps struct {
	User   string
	Ears   Listener
	Voice  Voice
	Brain  brain.Brain
	Memory Memory
	Apps   Launcher
	Cue    Cue       // optional
	Bus    Publisher // optional
}

type Outcome int

const (
	Silent Outcome = iota
	Ignored
	Greeted
	Launched
	Replied
	Ended
)

func (o Outcome) String() string {
	return [...]string{"silent", "ignored", "greeted", "launched", "replied", "ended"}[o]
}

// TurnResult is what one pass of capture → reply produced. Err is set when
// any step failed; the driver logs it and carries on.
type TurnResult struct {
	Heard   string
	Reply   string
	Outcome Outcome
	Err     error
}

type Assistant struct {
	Deps

	// Pause is the back-off after a failed turn.
	Pause time.Duration

	state brain.Context
}

func New(d Deps) *Assistant {
	if d.User == "" {
		d.User = memory.DefaultUserName
	}
	return &Assistant{
		Deps:  d,
		Pause: 500 * time.Millisecond,
		state: brain.FromRecord(d.Memory.Load()),
	}
}

// Context returns the in-process view of the conversation. Unlike the
// persisted record its history is not capped.
func (a *Assistant) Context() brain.Context { return a.state }

func (a *Assistant) Turn(ctx context.Context) TurnResult {
	if a.Cue != nil {
		a.Cue.Listening(ctx)
	}

	pcm, err := a.Ears.Listen(ctx)
	if err != nil {
		return TurnResult{Err: fmt.Errorf("listen: %w", err)}
	}
	if len(pcm) == 0 {
		return TurnResult{Outcome: Silent}
	}

	text, err := a.Voice.Transcribe(ctx, pcm)
	if err != nil {
		return TurnResult{Err: err}
	}
	text = strings.ToLower(strings.TrimSpace(text))
	log.Info("You", "said", text)

	res := TurnResult{Heard: text}

	switch {
	case isNoise(text):
		res.Outcome = Ignored
		return res

	case slices.Contains(greetings, text):
		res.Reply = fmt.Sprintf("Hello %s. How can I help you?", a.User)
		res.Outcome = Greeted
		res.Err = a.Voice.Say(ctx, res.Reply)
		return res

	case slices.Contains(farewells, text):
		res.Reply = fmt.Sprintf("Goodbye %s. Have a great day.", a.User)
		res.Outcome = Ended
		if err := a.Voice.Say(ctx, res.Reply); err != nil {
			log.Warn("Failed to say goodbye", "err", err)
		}
		a.remember(text, ReplySessionEnded)
		return res
	}

	if strings.HasPrefix(text, "open") && a.Apps != nil {
		if e, ok := a.Apps.Match(text); ok {
			res.Reply = "Opening " + e.Name
			res.Outcome = Launched
			if err := a.Voice.Say(ctx, res.Reply); err != nil {
				log.Warn("Failed to announce app", "err", err)
			}
			if err := a.Apps.Launch(ctx, e); err != nil {
				res.Err = err
				return res
			}
			a.remember(text, ReplyOpenedApp)
			return res
		}
	}

	reply, err := a.Brain.Think(ctx, text, a.state)
	if err != nil {
		res.Reply = ReplyConfused
		res.Err = fmt.Errorf("think: %w", err)
		if serr := a.Voice.Say(ctx, ReplyConfused); serr != nil {
			log.Warn("Failed to apologise", "err", serr)
		}
		return res
	}

	res.Reply = reply
	if err := a.Voice.SayShort(ctx, reply); err != nil {
		res.Err = fmt.Errorf("speak: %w", err)
		return res
	}

	a.remember(text, reply)
	res.Outcome = Replied
	return res
}

func (a *Assistant) remember(input, response string) {
	if err := a.Memory.Save(input, response); err != nil {
		log.Warn("Failed to save memory", "err", err)
	}

	a.state.LastCommand = input
	if response != ReplyOpenedApp {
		a.state.LastResponse = response
	}
	a.state.History = append(a.state.History, memory.Turn{
		User:   input,
		Jarvis: response,
		Time:   time.Now().Format(time.RFC3339),
	})
}

func isNoise(text string) bool {
	return len(text) < 2 || slices.Contains(fillers, text)
}

// Run drives turns until a farewell or until ctx is cancelled. With a nil
// triggers channel it listens continuously; otherwise it waits for one
// trigger per turn.
func (a *Assistant) Run(ctx context.Context, triggers <-chan struct{}) error {
	if err := a.Voice.Say(ctx, "Jarvis online. I am listening."); err != nil {
		log.Warn("Failed to greet", "err", err)
	}

	for {
		if triggers != nil {
			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-triggers:
				if !ok {
					return nil
				}
			}
		}
		if ctx.Err() != nil {
			return nil
		}

		res := a.Turn(ctx)
		a.publish(ctx, res)

		if res.Err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("Turn failed", "heard", res.Heard, "err", res.Err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(a.Pause):
			}
			continue
		}

		log.Debug("Turn done", "outcome", res.Outcome)

		if res.Outcome == Ended {
			log.Info("Session ended by user")
			return nil
		}
	}
}

func (a *Assistant) publish(ctx context.Context, res TurnResult) {
	if a.Bus == nil || res.Err != nil || res.Outcome <= Ignored {
		return
	}
	if err := a.Bus.PublishTurn(ctx, res.Heard, res.Reply); err != nil {
		log.Warn("Failed to publish turn", "err", err)
	}
}
