package audio

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/vad"
	"jarvis/pkg/audioconv"
)

type scriptedSource struct {
	frames [][]float32
	closed bool
}

func (s *scriptedSource) ReadFrame() ([]float32, error) {
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

func block(v float32, n int) []float32 {
	b := make([]float32, n)
	for i := range b {
		b[i] = v
	}
	return b
}

func TestRecorder_Listen(t *testing.T) {
	src := &scriptedSource{}
	for range 5 {
		src.frames = append(src.frames, block(0.01, 320))
	}
	for range 30 {
		src.frames = append(src.frames, block(0, 320))
	}

	p := &fakePactl{listing: sinkInputs, set: map[string]string{}}
	dump := filepath.Join(t.TempDir(), "voice.wav")

	r := NewRecorder(vad.DefaultConfig(), 320)
	r.Ducker = newTestDucker(p)
	r.DumpPath = dump
	r.open = func(rate, size int) (frameSource, error) {
		assert.Equal(t, 16000, rate)
		assert.Equal(t, 320, size)
		return src, nil
	}

	clip, err := r.Listen(context.Background())
	require.NoError(t, err)

	assert.Len(t, clip, 35*320)
	assert.True(t, src.closed)
	assert.Equal(t, "100%", p.set["41"], "volume restored after capture")

	saved, err := audioconv.ConvertFileToPCM16k(context.Background(), dump, audioconv.Options{})
	require.NoError(t, err)
	assert.Len(t, saved, len(clip))
}

func TestRecorder_Silence(t *testing.T) {
	src := &scriptedSource{frames: [][]float32{block(0, 320), block(0.0005, 320)}}
	dump := filepath.Join(t.TempDir(), "voice.wav")

	r := NewRecorder(vad.DefaultConfig(), 0)
	r.DumpPath = dump
	r.open = func(int, int) (frameSource, error) { return src, nil }

	clip, err := r.Listen(context.Background())
	require.NoError(t, err)
	assert.Empty(t, clip)
	assert.NoFileExists(t, dump)
	assert.Equal(t, 320, r.FrameSize)
}

func TestRecorder_OpenFailure(t *testing.T) {
	r := NewRecorder(vad.DefaultConfig(), 320)
	r.open = func(int, int) (frameSource, error) { return nil, errors.New("no input device") }

	_, err := r.Listen(context.Background())
	assert.ErrorContains(t, err, "no input device")
}

func TestRecorder_Cancelled(t *testing.T) {
	r := NewRecorder(vad.DefaultConfig(), 320)
	r.open = func(int, int) (frameSource, error) {
		return &scriptedSource{frames: [][]float32{block(0.5, 320)}}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	clip, err := r.Listen(ctx)
	require.NoError(t, err)
	assert.Empty(t, clip)
}
