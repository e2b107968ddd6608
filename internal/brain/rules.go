package brain

import (
	"context"
	"strings"
	"time"
)

const (
	ReplyName     = "I am Jarvis, your personal assistant."
	ReplyThanks   = "You're welcome. I am always here."
	ReplyContinue = "Would you like to continue with your previous task?"
	ReplyPrompt   = "Tell me what you would like me to do."
)

type rule struct {
	contains string
	reply    func(now time.Time) string
}

func fixed(s string) func(time.Time) string {
	return func(time.Time) string { return s }
}

// Checked in order, first hit wins.
var rules = []rule{
	{"how are you", fixed("I am functioning perfectly and ready to assist you.")},
	{"your name", fixed(ReplyName)},
	{"time", func(now time.Time) string { return now.Format("The time is 03:04 PM.") }},
	{"plan my day", fixed("Start with one important task, then we will build momentum together.")},
	{"thank", fixed(ReplyThanks)},
}

// Rules is the offline keyword brain.
type Rules struct {
	Now func() time.Time
}

func NewRules() *Rules {
	return &Rules{Now: time.Now}
}

func (r *Rules) Think(_ context.Context, input string, mc Context) (string, error) {
	input = strings.ToLower(input)

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	for _, rl := range rules {
		if strings.Contains(input, rl.contains) {
			return rl.reply(now()), nil
		}
	}

	if mc.LastCommand != "" {
		return ReplyContinue, nil
	}

	return ReplyPrompt, nil
}
