// Package player plays short mp3 and wav files through the default output.
package player

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

var (
	mu       sync.Mutex
	initRate beep.SampleRate
)

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	var dec func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		dec = mp3.Decode
	case ".wav":
		dec = func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(rc) }
	default:
		return nil, beep.Format{}, fmt.Errorf("cannot play %s: want .mp3 or .wav", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	s, format, err := dec(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, err
	}
	return s, format, nil
}

// Play blocks until the file has been played or ctx is done.
func Play(ctx context.Context, path string) error {
	mu.Lock()
	defer mu.Unlock()

	streamer, format, err := decode(path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	if initRate != format.SampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			return fmt.Errorf("init speaker: %w", err)
		}
		initRate = format.SampleRate
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
