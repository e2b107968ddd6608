package bus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hub upgrades one connection, sends the scripted messages and forwards
// everything it reads to got.
func hub(t *testing.T, script []Message) (string, <-chan Message) {
	t.Helper()
	got := make(chan Message, 8)
	up := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		for _, m := range script {
			assert.NoError(t, conn.WriteJSON(m))
		}
		for {
			var m Message
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			got <- m
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), got
}

func TestNewBus_RejectsNonWebsocketURL(t *testing.T) {
	_, err := NewBus("http://localhost:8092")
	assert.Error(t, err)
}

func TestPublishTurn(t *testing.T) {
	url, got := hub(t, nil)
	b, err := NewBus(url)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.PublishTurn(context.Background(), "what time is it", "The time is 09:15 AM."))

	select {
	case m := <-got:
		assert.Equal(t, Name, m.From)
		assert.Equal(t, KindTurn, m.Kind)

		var turn Turn
		require.NoError(t, json.Unmarshal([]byte(m.Content), &turn))
		assert.Equal(t, Turn{Heard: "what time is it", Reply: "The time is 09:15 AM."}, turn)
	case <-time.After(2 * time.Second):
		t.Fatal("hub got nothing")
	}
}

func TestTriggers(t *testing.T) {
	url, _ := hub(t, []Message{
		{From: "phone", To: "lamp", Kind: KindTrigger},
		{From: "phone", To: Name, Kind: "note", Content: "ignored"},
		{From: "phone", To: Name, Kind: KindTrigger},
	})
	b, err := NewBus(url)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	triggers, err := b.Triggers(ctx)
	require.NoError(t, err)

	select {
	case _, ok := <-triggers:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger forwarded")
	}

	cancel()
	select {
	case _, ok := <-triggers:
		assert.False(t, ok, "only one trigger was addressed to jarvis")
	case <-time.After(2 * time.Second):
		t.Fatal("trigger channel not closed after cancel")
	}
}

func TestWrite_DialFailure(t *testing.T) {
	b, err := NewBus("ws://127.0.0.1:1")
	require.NoError(t, err)

	err = b.PublishTurn(context.Background(), "hi", "hello")
	assert.ErrorContains(t, err, "dial bus")
}
