package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Process runs an external LLM binary once per prompt. The prompt is written
// to stdin as JSON and the whole of stdout is the reply.
type Process struct {
	Command []string
}

func NewProcess(command ...string) *Process {
	if len(command) == 0 {
		command = []string{"ollama", "run", "mistral"}
	}
	return &Process{Command: command}
}

func (p *Process) Generate(ctx context.Context, prompt Prompt) (string, error) {
	payload, err := json.Marshal(prompt)
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.Command[0], p.Command[1:]...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%s exited with %d: %s",
				p.Command[0], exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("run %s: %w", p.Command[0], err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", ErrEmptyReply
	}

	return out, nil
}
