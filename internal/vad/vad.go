package vad

import (
	"context"
	"errors"
	"io"
	"math"
	"time"
)

type Config struct {
	SampleRate       int
	StartThreshold   float64       // block volume that starts a recording
	SilenceThreshold float64       // block volume below which a block counts as silent
	SilenceDuration  time.Duration // consecutive silence that ends a recording
	MaxDuration      time.Duration // hard cap on a recording
	PreRoll          time.Duration // audio kept from before the start trigger
}

func DefaultConfig() Config {
	return Config{
		SampleRate:       16000,
		StartThreshold:   0.015,
		SilenceThreshold: 0.01,
		SilenceDuration:  600 * time.Millisecond,
		MaxDuration:      10 * time.Second,
		PreRoll:          300 * time.Millisecond,
	}
}

func (c Config) samples(d time.Duration) int {
	return int(math.Round(d.Seconds() * float64(c.SampleRate)))
}

type State int

const (
	Idle State = iota
	Recording
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Detector turns a stream of sample blocks into at most one utterance.
// It is not safe for concurrent use.
type Detector struct {
	cfg   Config
	state State

	pre        [][]float32
	preSamples int

	frames   [][]float32
	recorded int
	silent   int

	preLimit     int
	silenceLimit int
	maxLimit     int
}

func NewDetector(cfg Config) *Detector {
	return &Detector{
		cfg:          cfg,
		preLimit:     cfg.samples(cfg.PreRoll),
		silenceLimit: cfg.samples(cfg.SilenceDuration),
		maxLimit:     cfg.samples(cfg.MaxDuration),
	}
}

func (d *Detector) State() State { return d.state }

// Feed consumes one block and returns the state after it. The block is
// copied, so callers may reuse their buffer.
func (d *Detector) Feed(block []float32) State {
	if d.state == Stopped || len(block) == 0 {
		return d.state
	}

	frame := append([]float32(nil), block...)
	vol := Volume(frame)

	if d.state == Idle {
		if vol <= d.cfg.StartThreshold {
			d.pushPre(frame)
			return d.state
		}
		d.state = Recording
		d.frames = append(d.frames, d.pre...)
		d.pre, d.preSamples = nil, 0
	}

	d.frames = append(d.frames, frame)
	d.recorded += len(frame)

	if vol < d.cfg.SilenceThreshold {
		d.silent += len(frame)
	} else {
		d.silent = 0
	}

	if d.silent >= d.silenceLimit || d.recorded >= d.maxLimit {
		d.state = Stopped
	}

	return d.state
}

func (d *Detector) pushPre(frame []float32) {
	d.pre = append(d.pre, frame)
	d.preSamples += len(frame)
	for len(d.pre) > 0 && d.preSamples > d.preLimit {
		d.preSamples -= len(d.pre[0])
		d.pre = d.pre[1:]
	}
}

// Clip returns the buffered utterance with its peak scaled to 1.0, or nil if
// nothing was recorded.
func (d *Detector) Clip() []float32 {
	if len(d.frames) == 0 {
		return nil
	}

	n := 0
	for _, f := range d.frames {
		n += len(f)
	}
	out := make([]float32, 0, n)
	for _, f := range d.frames {
		out = append(out, f...)
	}

	return Normalize(out)
}

// Volume is the L2 norm of a block.
func Volume(block []float32) float64 {
	var s float64
	for _, x := range block {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

// Normalize scales x in place so that its peak magnitude is 1.0.
func Normalize(x []float32) []float32 {
	var peak float64
	for _, v := range x {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	scale := 1 / (peak + 1e-8)
	for i, v := range x {
		x[i] = float32(float64(v) * scale)
	}
	return x
}

// FrameSource yields consecutive sample blocks. io.EOF ends the stream.
type FrameSource interface {
	ReadFrame() ([]float32, error)
}

// Capture blocks until one utterance has been recorded, the source ends, or
// ctx is cancelled. The latter two count as an external stop and return
// whatever was recorded so far, which is nil if speech never started.
func Capture(ctx context.Context, src FrameSource, cfg Config) ([]float32, error) {
	d := NewDetector(cfg)

	for {
		select {
		case <-ctx.Done():
			return d.Clip(), nil
		default:
		}

		frame, err := src.ReadFrame()
		if errors.Is(err, io.EOF) {
			return d.Clip(), nil
		}
		if err != nil {
			return nil, err
		}

		if d.Feed(frame) == Stopped {
			return d.Clip(), nil
		}
	}
}
