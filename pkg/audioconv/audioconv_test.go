package audioconv

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n, rate int, hz float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*hz*float64(i)/float64(rate)))
	}
	return out
}

func TestWriteWAV_DecodesBack(t *testing.T) {
	dir := t.TempDir()
	in := sine(TargetRate/2, TargetRate, 440)

	// No extension, so the decoder has to be picked by sniffing.
	path := filepath.Join(dir, "clip")
	require.NoError(t, WriteWAV(path, in, TargetRate))

	out, err := ConvertFileToPCM16k(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.InDelta(t, in[i], out[i], 1e-3)
	}
}

func TestConvert_ResamplesAndLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hi.wav")
	require.NoError(t, WriteWAV(path, sine(48000, 48000, 220), 48000))

	out, err := ConvertFileToPCM16k(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Len(t, out, TargetRate)

	out, err = ConvertFileToPCM16k(context.Background(), path, Options{MaxSamples: 100})
	require.NoError(t, err)
	assert.Len(t, out, 100)
}

func TestConvert_Corrupt(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not audio at all"), 0o644))
	_, err := ConvertFileToPCM16k(context.Background(), bad, Options{})
	assert.Error(t, err)

	unknown := filepath.Join(dir, "blob")
	require.NoError(t, os.WriteFile(unknown, []byte{1, 2, 3, 4, 5}, 0o644))
	_, err = ConvertFileToPCM16k(context.Background(), unknown, Options{})
	assert.ErrorContains(t, err, "unsupported")

	_, err = ConvertFileToPCM16k(context.Background(), filepath.Join(dir, "missing.wav"), Options{})
	assert.Error(t, err)
}

func TestConvert_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ConvertFileToPCM16k(ctx, "whatever.wav", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSniff(t *testing.T) {
	cases := []struct {
		data []byte
		want Format
	}{
		{[]byte("RIFF...."), FormatWAV},
		{[]byte("OggS...."), FormatOgg},
		{[]byte("ID3\x04"), FormatMP3},
		{[]byte{0xFF, 0xFB, 0x90, 0x00}, FormatMP3},
		{[]byte("{}"), FormatUnknown},
	}
	for _, c := range cases {
		got, err := Sniff(bytes.NewReader(c.data))
		require.NoError(t, err)
		assert.Equal(t, c.want, got, string(c.data))
	}
}

func TestDownmix(t *testing.T) {
	assert.Equal(t, []float32{0.5, 0}, Downmix([]float32{1, 0, 0.5, -0.5}, 2))
	mono := []float32{1, 2}
	assert.Equal(t, mono, Downmix(mono, 1))
}

func TestResample(t *testing.T) {
	assert.Len(t, Resample(make([]float32, 4800), 48000, 16000), 1600)
	assert.Len(t, Resample(make([]float32, 100), 8000, 16000), 200)
	assert.Empty(t, Resample(nil, 44100, 16000))
}
