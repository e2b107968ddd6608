package brain

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
)

type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(client openai.Client, model string) *OpenAI {
	if model == "" {
		model = string(openai.ChatModelGPT5Nano)
	}
	return &OpenAI{client: client, model: model}
}

func (o *OpenAI) Generate(ctx context.Context, p Prompt) (string, error) {
	msgs := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(strings.TrimSpace(p.System)),
	}
	for _, m := range p.Memory {
		msgs = append(msgs, openai.UserMessage(m.User), openai.AssistantMessage(m.Jarvis))
	}
	msgs = append(msgs, openai.UserMessage(p.User))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openai.ChatModel(o.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return resp.Choices[0].Message.Content, nil
}
