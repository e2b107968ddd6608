package ipc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func socketPath(t *testing.T) string {
	t.Helper()
	// Unix socket paths are length limited; t.TempDir can be too deep.
	dir, err := os.MkdirTemp("", "jv")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "ctl.sock")
}

func TestListenAndSend(t *testing.T) {
	path := socketPath(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan ControlMessage, 1)
	require.NoError(t, Listen(ctx, path, func(m ControlMessage) { got <- m }))

	require.NoError(t, Send(path, CmdTrigger))

	select {
	case m := <-got:
		assert.Equal(t, CmdTrigger, m.Cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("no message")
	}
}

func TestListen_RemovesSocketOnCancel(t *testing.T) {
	path := socketPath(t)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, Listen(ctx, path, func(ControlMessage) {}))
	cancel()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Error(t, Send(path, CmdTrigger))
}

func TestTriggers(t *testing.T) {
	path := socketPath(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopped := make(chan struct{})
	triggers, err := Triggers(ctx, path, func() { close(stopped) })
	require.NoError(t, err)

	require.NoError(t, Send(path, CmdTrigger))
	select {
	case <-triggers:
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger")
	}

	require.NoError(t, Send(path, "dance"))
	require.NoError(t, Send(path, CmdQuit))
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("quit not handled")
	}
}
