package apps

import (
	"context"
	"fmt"
	log "log/slog"
	"os/exec"
	"runtime"
	"strings"
)

type Entry struct {
	Name   string
	Target string
}

// DefaultTable maps spoken names to launch targets. Order matters: the first
// name contained in the command wins.
var DefaultTable = []Entry{
	{"chrome", "chrome"},
	{"google chrome", "chrome"},
	{"edge", "msedge"},
	{"browser", "chrome"},
	{"vs code", "code"},
	{"vscode", "code"},
	{"visual studio code", "code"},
	{"notepad", "notepad"},
	{"calculator", "calc"},
	{"file explorer", "explorer"},
	{"explorer", "explorer"},
	{"spotify", "spotify"},
	{"whatsapp", "whatsapp"},
}

// Starter starts a process without waiting for it.
type Starter func(ctx context.Context, name string, args ...string) error

func execStart(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug("Launched app exited", "cmd", name, "err", err)
		}
	}()
	return nil
}

type Launcher struct {
	table []Entry
	goos  string
	start Starter
}

func NewLauncher(table []Entry) *Launcher {
	if len(table) == 0 {
		table = DefaultTable
	}
	return &Launcher{table: table, goos: runtime.GOOS, start: execStart}
}

// Match returns the first entry whose name occurs in command.
func (l *Launcher) Match(command string) (Entry, bool) {
	command = strings.ToLower(command)
	for _, e := range l.table {
		if strings.Contains(command, e.Name) {
			return e, true
		}
	}
	return Entry{}, false
}

func (l *Launcher) Launch(ctx context.Context, e Entry) error {
	name, args := l.commandFor(e.Target)
	log.Info("Launching", "app", e.Name, "cmd", name, "args", args)
	if err := l.start(ctx, name, args...); err != nil {
		return fmt.Errorf("launch %s: %w", e.Name, err)
	}
	return nil
}

func (l *Launcher) commandFor(target string) (string, []string) {
	switch l.goos {
	case "windows":
		return "cmd", []string{"/c", "start", "", target}
	case "darwin":
		return "open", []string{"-a", target}
	default:
		return target, nil
	}
}
