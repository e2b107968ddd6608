package brain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"jarvis/internal/config"
)

// New builds the brain selected by cfg.Kind. httpClient is used by the
// network-backed generators and may be nil.
func New(cfg config.Brain, httpClient *http.Client) (Brain, error) {
	switch strings.ToLower(cfg.Kind) {
	case "rules", "":
		return NewRules(), nil

	case "process":
		return NewDelegate(NewProcess(cfg.Command...), ""), nil

	case "ollama":
		gen, err := NewOllama(cfg.Host, cfg.Model, httpClient)
		if err != nil {
			return nil, err
		}
		return NewDelegate(gen, ""), nil

	case "openai":
		if cfg.APIKey == "" {
			return nil, errors.New("OPENAI_API_KEY not set")
		}
		opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
		if httpClient != nil {
			opts = append(opts, option.WithHTTPClient(httpClient))
		}
		return NewDelegate(NewOpenAI(openai.NewClient(opts...), cfg.Model), ""), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
