package brain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_Think(t *testing.T) {
	r := &Rules{Now: func() time.Time {
		return time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC)
	}}

	tests := []struct {
		name  string
		input string
		mc    Context
		want  string
	}{
		{name: "name", input: "What is your name?", want: ReplyName},
		{name: "greeting", input: "hey, how are you doing", want: "I am functioning perfectly and ready to assist you."},
		{name: "time", input: "what time is it", want: "The time is 03:04 PM."},
		{name: "plan", input: "please plan my day", want: "Start with one important task, then we will build momentum together."},
		{name: "thanks", input: "Thank you so much", want: ReplyThanks},
		{name: "fallback", input: "sing me a song", want: ReplyPrompt},
		{name: "fallback with history", input: "sing me a song", mc: Context{LastCommand: "open chrome"}, want: ReplyContinue},
		// "how are you" is checked before "your name".
		{name: "first match wins", input: "how are you, what's your name", want: "I am functioning perfectly and ready to assist you."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Think(context.Background(), tt.input, tt.mc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRules_ZeroValueUsesWallClock(t *testing.T) {
	got, err := (&Rules{}).Think(context.Background(), "time please", Context{})
	require.NoError(t, err)
	assert.Regexp(t, `^The time is \d\d:\d\d (AM|PM)\.$`, got)
}
