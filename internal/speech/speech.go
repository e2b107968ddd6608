package speech

import (
	"context"
	"fmt"
	log "log/slog"
	"regexp"
	"strings"
)

// Transcriber is the speech-to-text model: 16 kHz mono PCM or an audio file in,
// text out.
type Transcriber interface {
	TranscribePCM(ctx context.Context, pcm []float32) (string, error)
	TranscribeFile(ctx context.Context, path string) (string, error)
}

// Speaker is the text-to-speech engine.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// SpokenSentences bounds how much of a reply the interactive loop reads aloud.
const SpokenSentences = 2

type Pipeline struct {
	stt Transcriber
	tts Speaker
}

func NewPipeline(stt Transcriber, tts Speaker) *Pipeline {
	return &Pipeline{stt: stt, tts: tts}
}

// Transcribe returns the trimmed transcript. It is empty when the model heard
// nothing it could put into words.
func (p *Pipeline) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}
	text, err := p.stt.TranscribePCM(ctx, pcm)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return clean(text), nil
}

func (p *Pipeline) TranscribeFile(ctx context.Context, path string) (string, error) {
	text, err := p.stt.TranscribeFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", path, err)
	}
	return clean(text), nil
}

// Say speaks text in full.
func (p *Pipeline) Say(ctx context.Context, text string) error {
	log.Info("Jarvis", "says", text)
	if p.tts == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	return p.tts.Speak(ctx, text)
}

// SayShort speaks only the opening sentences of text, one at a time.
func (p *Pipeline) SayShort(ctx context.Context, text string) error {
	sentences := Sentences(text)
	if len(sentences) > SpokenSentences {
		sentences = sentences[:SpokenSentences]
	}
	for _, s := range sentences {
		if err := p.Say(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

var (
	sentenceEnd = regexp.MustCompile(`[.!?]\s+`)
	// whisper.cpp emits bracketed tags such as [BLANK_AUDIO] or (silence)
	// instead of words when it hears nothing.
	nonSpeech = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
)

// Sentences splits text after '.', '!' or '?' followed by whitespace.
func Sentences(text string) []string {
	var out []string
	rest := strings.TrimSpace(text)
	for rest != "" {
		loc := sentenceEnd.FindStringIndex(rest)
		if loc == nil {
			out = append(out, rest)
			break
		}
		if s := strings.TrimSpace(rest[:loc[0]+1]); s != "" {
			out = append(out, s)
		}
		rest = rest[loc[1]:]
	}
	return out
}

func clean(text string) string {
	return strings.Join(strings.Fields(nonSpeech.ReplaceAllString(text, "")), " ")
}
