package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"time"
)

const SocketPath = "/tmp/jarvis.sock"

const (
	CmdTrigger = "trigger"
	CmdQuit    = "quit"
)

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

// StartServer listens on SocketPath until ctx is done.
func StartServer(ctx context.Context, handler func(ControlMessage)) error {
	return Listen(ctx, SocketPath, handler)
}

// Listen replaces any stale socket at path and hands each decoded message to
// handler. Accepting stops and the socket is removed once ctx is done.
func Listen(ctx context.Context, path string, handler func(ControlMessage)) error {
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
		os.Remove(path)
	}()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				log.Warn("Control socket accept failed", "err", err)
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	return nil
}

func handleConn(conn net.Conn, handler func(ControlMessage)) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		log.Debug("Bad control message", "err", err)
		return
	}
	handler(msg)
}

func SendCommand(cmd string) error {
	return Send(SocketPath, cmd)
}

func Send(path, cmd string) error {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return err
	}
	defer conn.Close()

	return json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd})
}

// Triggers adapts the control socket to the loop driver: every trigger
// command becomes one tick, quit calls stop.
func Triggers(ctx context.Context, path string, stop func()) (<-chan struct{}, error) {
	out := make(chan struct{}, 1)
	err := Listen(ctx, path, func(m ControlMessage) {
		switch m.Cmd {
		case CmdTrigger:
			select {
			case out <- struct{}{}:
			default:
				log.Info("Busy, dropping trigger")
			}
		case CmdQuit:
			stop()
		default:
			log.Warn("Unknown command", "cmd", m.Cmd)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
