package tts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/config"
)

// fakePiper writes a script that copies stdin and its arguments into the
// requested output file.
func fakePiper(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "piper")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

const echoScript = `
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    --output_file) out="$2"; shift ;;
  esac
  shift
done
cat > "$out"
`

func TestPiper_SynthesisesAndPlays(t *testing.T) {
	p := NewPiper(fakePiper(t, echoScript), "voice.onnx", 3)

	var played, content string
	p.play = func(_ context.Context, path string) error {
		played = path
		b, err := os.ReadFile(path)
		content = string(b)
		return err
	}

	require.NoError(t, p.Speak(context.Background(), "Hello Tony."))

	assert.Equal(t, "Hello Tony.", content)
	_, err := os.Stat(played)
	assert.True(t, os.IsNotExist(err), "temp wav removed")
}

func TestPiper_FailureCarriesStderr(t *testing.T) {
	p := NewPiper(fakePiper(t, "echo 'model not found' >&2\nexit 2\n"), "missing.onnx", 0)
	p.play = func(context.Context, string) error {
		t.Fatal("nothing to play")
		return nil
	}

	err := p.Speak(context.Background(), "hi")
	assert.ErrorContains(t, err, "model not found")
}

func TestPiper_EmptyText(t *testing.T) {
	p := NewPiper("/nonexistent/piper", "", 0)
	assert.NoError(t, p.Speak(context.Background(), ""))
}

func TestNew(t *testing.T) {
	s, err := New(config.TTS{Engine: "piper", PiperModel: "m.onnx", Speaker: 4})
	require.NoError(t, err)
	require.IsType(t, &Piper{}, s)
	assert.Equal(t, "piper", s.(*Piper).Binary)
	assert.Equal(t, 4, s.(*Piper).Speaker)

	s, err = New(config.TTS{Voice: "en-us"})
	require.NoError(t, err)
	assert.Equal(t, "en-us", s.(*Espeak).Voice)

	_, err = New(config.TTS{Engine: "sam"})
	assert.Error(t, err)
}
