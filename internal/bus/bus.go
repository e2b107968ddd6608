package bus

import (
	"context"
	"encoding/json"
	"fmt"
	log "log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

const (
	Name = "jarvis"

	KindTurn    = "turn"
	KindTrigger = "trigger"
)

type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// Turn is the content of a KindTurn message.
type Turn struct {
	Heard string `json:"heard"`
	Reply string `json:"reply"`
}

// Bus is a websocket link to a hub. It dials lazily and redials after a
// failed write.
type Bus struct {
	url string
	to  string

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewBus(wsURL string) (*Bus, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("parse bus url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("bus url %q: scheme must be ws or wss", wsURL)
	}
	return &Bus{url: u.String(), to: "hub"}, nil
}

func (b *Bus) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.dial(ctx)
	return err
}

func (b *Bus) dial(ctx context.Context) (*websocket.Conn, error) {
	if b.conn != nil {
		return b.conn, nil
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial bus: %w", err)
	}

	log.Info("Connected to bus", "url", b.url)
	b.conn = conn
	return conn, nil
}

func (b *Bus) Write(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := b.dial(ctx)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		conn.Close()
		b.conn = nil
		return fmt.Errorf("write bus: %w", err)
	}
	return nil
}

// PublishTurn announces one finished exchange.
func (b *Bus) PublishTurn(ctx context.Context, heard, reply string) error {
	content, err := json.Marshal(Turn{Heard: heard, Reply: reply})
	if err != nil {
		return err
	}
	return b.Write(ctx, Message{From: Name, To: b.to, Kind: KindTurn, Content: string(content)})
}

// Triggers forwards every trigger message addressed to Jarvis until ctx is
// done or the connection drops. The returned channel is closed on exit.
func (b *Bus) Triggers(ctx context.Context) (<-chan struct{}, error) {
	b.mu.Lock()
	conn, err := b.dial(ctx)
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make(chan struct{})
	go func() {
		defer close(out)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Warn("Bus read stopped", "err", err)
				}
				return
			}

			var m Message
			if err := json.Unmarshal(data, &m); err != nil {
				log.Debug("Skipping malformed bus message", "err", err)
				continue
			}
			if m.To != Name || m.Kind != KindTrigger {
				continue
			}

			select {
			case out <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		<-ctx.Done()
		b.Close()
	}()

	return out, nil
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}
