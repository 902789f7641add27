package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LangChainCompleter adapts a langchaingo model to Completer
type LangChainCompleter struct {
	model llms.Model
	opts  Options
}

// NewLangChainCompleter wraps an existing model
func NewLangChainCompleter(model llms.Model, opts Options) *LangChainCompleter {
	return &LangChainCompleter{model: model, opts: opts.withDefaults()}
}

// NewOllamaCompleter connects to an Ollama server. No credential is needed.
func NewOllamaCompleter(serverURL string, opts Options) (*LangChainCompleter, error) {
	opts = opts.withDefaults()
	ollamaOpts := []ollama.Option{ollama.WithModel(opts.Model)}
	if serverURL != "" {
		ollamaOpts = append(ollamaOpts, ollama.WithServerURL(serverURL))
	}

	model, err := ollama.New(ollamaOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return NewLangChainCompleter(model, opts), nil
}

// Complete sends the system and user messages through the model
func (c *LangChainCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithTemperature(c.opts.Temperature),
		llms.WithMaxTokens(c.opts.MaxTokens),
	)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}
