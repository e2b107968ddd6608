package player

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlay_RejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cue.flac")
	require.NoError(t, os.WriteFile(path, []byte("fLaC"), 0o644))

	err := Play(context.Background(), path)
	assert.ErrorContains(t, err, "want .mp3 or .wav")
}

func TestPlay_MissingFile(t *testing.T) {
	err := Play(context.Background(), filepath.Join(t.TempDir(), "beep.mp3"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
