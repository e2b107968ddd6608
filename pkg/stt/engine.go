package stt

import (
	"context"
	"fmt"
	"sync"

	"jarvis/pkg/audioconv"
)

// MaxFileSamples caps decoded uploads at ten minutes of 16 kHz audio.
const MaxFileSamples = 10 * 60 * audioconv.TargetRate

// Engine binds a Transcriber to fixed options. Decodes are serialised so one
// loaded model can serve concurrent callers.
type Engine struct {
	mu  sync.Mutex
	tr  *Transcriber
	opt Options
}

func NewEngine(tr *Transcriber, opt Options) *Engine {
	return &Engine{tr: tr, opt: opt}
}

func (e *Engine) TranscribePCM(ctx context.Context, pcm []float32) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.tr.TranscribePCM(ctx, pcm, e.opt)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (e *Engine) TranscribeFile(ctx context.Context, path string) (string, error) {
	pcm, err := audioconv.ConvertFileToPCM16k(ctx, path, audioconv.Options{MaxSamples: MaxFileSamples})
	if err != nil {
		return "", fmt.Errorf("convert: %w", err)
	}
	if len(pcm) == 0 {
		return "", nil
	}
	return e.TranscribePCM(ctx, pcm)
}

func (e *Engine) Close() error {
	return e.tr.Close()
}
