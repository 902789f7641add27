package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when no API key is configured
	ErrMissingCredential = errors.New("API key not configured")
	// ErrEmptyCompletion is returned when the service answers with no content
	ErrEmptyCompletion = errors.New("failed to generate content")
)

// Completer produces a completion for a system instruction and a user prompt
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options tunes a completion request
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Defaults used by the editor's generator
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 2048
)

// DefaultOptions returns the default request options
func DefaultOptions() Options {
	return Options{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

func (o Options) withDefaults() Options {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}

// UpstreamError is a non-success answer from the generation service
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// TransportError wraps failures that prevented getting any answer
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "generation request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
