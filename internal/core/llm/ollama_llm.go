package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/markdave123-py/Chatlens/internal/core"
)

const (
	DefaultOllamaModel = "llama3.2:1b"
	DefaultOllamaHost  = "http://localhost:11434"
)

// OllamaLLM talks to a local Ollama server through langchaingo.
type OllamaLLM struct {
	llm       llms.Model
	modelName string
}

func NewOllamaLLM(host, modelName string) (*OllamaLLM, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	if modelName == "" {
		modelName = DefaultOllamaModel
	}

	m, err := ollama.New(
		ollama.WithModel(modelName),
		ollama.WithServerURL(host),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama model: %w", err)
	}
	return &OllamaLLM{llm: m, modelName: modelName}, nil
}

// Generate sends prompt as a single human message and returns the reply.
func (o *OllamaLLM) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := o.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", &core.ModelFailure{Backend: "ollama", Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", core.ErrEmptyReply
	}
	return resp.Choices[0].Content, nil
}

func (o *OllamaLLM) Model() string {
	return o.modelName
}

var _ core.LLMProvider = (*OllamaLLM)(nil)
