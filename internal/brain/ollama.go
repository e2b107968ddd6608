package brain

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// Ollama talks to a local Ollama server instead of spawning the CLI.
type Ollama struct {
	client *api.Client
	model  string
}

func NewOllama(host, model string, httpClient *http.Client) (*Ollama, error) {
	if model == "" {
		model = "mistral"
	}

	var (
		client *api.Client
		err    error
	)
	if host == "" {
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("ollama client: %w", err)
		}
	} else {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		u, perr := url.Parse(host)
		if perr != nil {
			return nil, fmt.Errorf("parse ollama host: %w", perr)
		}
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		client = api.NewClient(u, httpClient)
	}

	return &Ollama{client: client, model: model}, nil
}

func (o *Ollama) Generate(ctx context.Context, p Prompt) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		System: strings.TrimSpace(p.System),
		Prompt: transcript(p),
		Stream: &stream,
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return sb.String(), nil
}

// transcript renders the memory window and the new input as a plain dialogue.
func transcript(p Prompt) string {
	var sb strings.Builder
	for _, m := range p.Memory {
		fmt.Fprintf(&sb, "User: %s\nJarvis: %s\n", m.User, m.Jarvis)
	}
	fmt.Fprintf(&sb, "User: %s\nJarvis:", p.User)
	return sb.String()
}
