package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

type Options struct {
	Language        string        // e.g. "auto", "en"
	TranslateToEn   bool          // if true, translate non-EN -> EN
	Threads         int           // <=0 => NumCPU()
	InitialPrompt   string        // optional prefix prompt
	TokenTimestamps bool          // include per-token timestamps
	MaxTokens       uint          // 0 = no limit
	BeamSize        int           // 0 = greedy; >0 enables beam search
	Temperature     float32       // 0 = default
	TemperatureStep float32       // 0 = default
	NoFallback      bool          // never retry a segment at a higher temperature
	Offset          time.Duration // start offset (optional)
	Duration        time.Duration // max duration (optional)
}

// EnglishGreedy is a deterministic English-only decode: no translation,
// greedy search, temperature 0 and no fallback.
func EnglishGreedy(threads int) Options {
	return Options{Language: "en", Threads: threads, NoFallback: true}
}

type Segment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

type Result struct {
	Text     string
	Segments []Segment
	Language string // detected or forced
}

type Transcriber struct {
	model whisper.Model
}

func NewTranscriber(modelPath string) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelPath, err)
	}
	return &Transcriber{model: m}, nil
}

func (t *Transcriber) Close() error {
	if t.model == nil {
		return nil
	}
	return t.model.Close()
}

// TranscribePCM runs one decode. pcm16k must be mono @ 16 kHz in [-1, 1].
func (t *Transcriber) TranscribePCM(ctx context.Context, pcm16k []float32, opt Options) (Result, error) {
	if t.model == nil {
		return Result{}, errors.New("nil model")
	}
	if len(pcm16k) == 0 {
		return Result{}, errors.New("no audio samples provided")
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("new context: %w", err)
	}

	if opt.Language == "" {
		opt.Language = "auto"
	}
	if err := wctx.SetLanguage(opt.Language); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}
	wctx.SetTranslate(opt.TranslateToEn)

	if opt.Offset > 0 {
		wctx.SetOffset(opt.Offset)
	}
	if opt.Duration > 0 {
		wctx.SetDuration(opt.Duration)
	}

	threads := opt.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if opt.TokenTimestamps {
		wctx.SetTokenTimestamps(true)
	}
	if opt.MaxTokens > 0 {
		wctx.SetMaxTokensPerSegment(opt.MaxTokens)
	}
	if opt.BeamSize > 0 {
		wctx.SetBeamSize(opt.BeamSize)
	}
	if opt.InitialPrompt != "" {
		wctx.SetInitialPrompt(opt.InitialPrompt)
	}
	wctx.SetTemperature(opt.Temperature)
	switch {
	case opt.NoFallback:
		wctx.SetTemperatureFallback(0)
	case opt.TemperatureStep != 0:
		wctx.SetTemperatureFallback(opt.TemperatureStep)
	}

	if err := wctx.Process(pcm16k, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("process: %w", err)
	}

	var (
		segs  []Segment
		parts []string
	)
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("next segment: %w", err)
		}
		segs = append(segs, Segment{
			Text:     s.Text,
			StartSec: s.Start.Seconds(),
			EndSec:   s.End.Seconds(),
		})
		parts = append(parts, strings.TrimSpace(s.Text))
	}

	lang := wctx.DetectedLanguage()
	if lang == "" {
		lang = wctx.Language()
	}

	return Result{
		Text:     strings.Join(parts, " "),
		Segments: segs,
		Language: lang,
	}, nil
}
