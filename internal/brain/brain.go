package brain

import (
	"context"
	"errors"

	"jarvis/internal/memory"
)

// ReplyConfused is what callers say when the brain fails.
const ReplyConfused = "Sorry, I could not work that out."

var (
	ErrEmptyReply  = errors.New("brain produced an empty reply")
	ErrUnknownKind = errors.New("unknown brain kind")
)

// Brain picks a reply for one lowercased transcript.
type Brain interface {
	Think(ctx context.Context, input string, mc Context) (string, error)
}

// Context is what the brain knows about earlier turns.
type Context struct {
	LastCommand  string
	LastResponse string
	History      []memory.Turn
}

func FromRecord(rec memory.Record) Context {
	return Context{
		LastCommand:  rec.LastCommand,
		LastResponse: rec.LastResponse,
		History:      append([]memory.Turn(nil), rec.History...),
	}
}

// Recent returns at most n of the newest turns.
func (c Context) Recent(n int) []memory.Turn {
	return memory.Record{History: c.History}.Recent(n)
}
