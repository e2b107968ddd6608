package audio

import (
	"context"
	"fmt"
	log "log/slog"

	"github.com/gordonklaus/portaudio"

	"jarvis/internal/vad"
	"jarvis/pkg/audioconv"
)

// frameSource is an open input stream.
type frameSource interface {
	vad.FrameSource
	Close() error
}

// Recorder captures one utterance per Listen call from the default input
// device, 16 kHz mono in 20 ms blocks by default.
type Recorder struct {
	Config    vad.Config
	FrameSize int

	Ducker   *Ducker // optional
	DumpPath string  // optional: last clip is written here as WAV

	open func(sampleRate, frameSize int) (frameSource, error)
}

func NewRecorder(cfg vad.Config, frameSize int) *Recorder {
	if frameSize <= 0 {
		frameSize = cfg.SampleRate / 50
	}
	return &Recorder{Config: cfg, FrameSize: frameSize, open: openStream}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Listen blocks until an utterance was captured or ctx is done. An empty clip
// means nobody spoke.
func (r *Recorder) Listen(ctx context.Context) ([]float32, error) {
	src, err := r.open(r.Config.SampleRate, r.FrameSize)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer src.Close()

	if r.Ducker != nil {
		if err := r.Ducker.Duck(ctx); err != nil {
			log.Warn("Failed to duck other streams", "err", err)
		}
		defer func() {
			// ctx may already be cancelled; restoring volume must still happen.
			if err := r.Ducker.Unduck(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Failed to restore other streams", "err", err)
			}
		}()
	}

	clip, err := vad.Capture(ctx, src, r.Config)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	log.Debug("Recorded", "samples", len(clip))

	if r.DumpPath != "" && len(clip) > 0 {
		if err := audioconv.WriteWAV(r.DumpPath, clip, r.Config.SampleRate); err != nil {
			log.Warn("Failed to dump clip", "path", r.DumpPath, "err", err)
		}
	}
	return clip, nil
}

type paStream struct {
	stream *portaudio.Stream
	buf    []float32
}

func openStream(sampleRate, frameSize int) (frameSource, error) {
	s := &paStream{buf: make([]float32, frameSize)}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(s.buf), s.buf)
	if err != nil {
		return nil, err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, err
	}
	s.stream = stream
	return s, nil
}

func (s *paStream) ReadFrame() ([]float32, error) {
	if err := s.stream.Read(); err != nil {
		// Overflow drops samples but the block is still usable.
		if err != portaudio.InputOverflowed {
			return nil, err
		}
	}
	return s.buf, nil
}

func (s *paStream) Close() error {
	s.stream.Stop()
	return s.stream.Close()
}
