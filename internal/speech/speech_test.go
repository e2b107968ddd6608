package speech

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSTT struct {
	text string
	err  error
	pcm  int
	path string
}

func (f *fakeSTT) TranscribePCM(_ context.Context, pcm []float32) (string, error) {
	f.pcm = len(pcm)
	return f.text, f.err
}

func (f *fakeSTT) TranscribeFile(_ context.Context, path string) (string, error) {
	f.path = path
	return f.text, f.err
}

type fakeTTS struct {
	said []string
	err  error
}

func (f *fakeTTS) Speak(_ context.Context, text string) error {
	f.said = append(f.said, text)
	return f.err
}

func TestSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "One sentence", want: []string{"One sentence"}},
		{in: "Hello there. How are you? Great!", want: []string{"Hello there.", "How are you?", "Great!"}},
		{in: "  Version 1.5 is out.  Try it!\nNow. ", want: []string{"Version 1.5 is out.", "Try it!", "Now."}},
		{in: "Wait... what?", want: []string{"Wait...", "what?"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sentences(tt.in), tt.in)
	}
}

func TestSayShort_SpeaksTwoSentences(t *testing.T) {
	tts := &fakeTTS{}
	p := NewPipeline(&fakeSTT{}, tts)

	require.NoError(t, p.SayShort(context.Background(), "First. Second! Third? Fourth."))
	assert.Equal(t, []string{"First.", "Second!"}, tts.said)
}

func TestSay_SkipsBlank(t *testing.T) {
	tts := &fakeTTS{}
	p := NewPipeline(&fakeSTT{}, tts)

	require.NoError(t, p.Say(context.Background(), "   "))
	assert.Empty(t, tts.said)

	require.NoError(t, NewPipeline(&fakeSTT{}, nil).Say(context.Background(), "no engine"))
}

func TestSayShort_PropagatesError(t *testing.T) {
	boom := errors.New("no audio device")
	p := NewPipeline(&fakeSTT{}, &fakeTTS{err: boom})

	assert.ErrorIs(t, p.SayShort(context.Background(), "One. Two."), boom)
}

func TestTranscribe(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain", text: "  Open Chrome  ", want: "Open Chrome"},
		{name: "blank marker", text: " [BLANK_AUDIO]", want: ""},
		{name: "sound tag", text: "(wind blowing)", want: ""},
		{name: "mixed", text: "[MUSIC] what time is it", want: "what time is it"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stt := &fakeSTT{text: tt.text}
			got, err := NewPipeline(stt, nil).Transcribe(context.Background(), make([]float32, 16))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 16, stt.pcm)
		})
	}
}

func TestTranscribe_EmptyClipSkipsModel(t *testing.T) {
	stt := &fakeSTT{text: "should not be used"}
	got, err := NewPipeline(stt, nil).Transcribe(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, stt.pcm)
}

func TestTranscribeFile(t *testing.T) {
	stt := &fakeSTT{text: " hello "}
	got, err := NewPipeline(stt, nil).TranscribeFile(context.Background(), "/tmp/x.wav")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, "/tmp/x.wav", stt.path)

	boom := errors.New("bad header")
	_, err = NewPipeline(&fakeSTT{err: boom}, nil).TranscribeFile(context.Background(), "/tmp/x.wav")
	assert.ErrorIs(t, err, boom)
}
