package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
)

//go:embed prompt.md
var defaultPrompt string

// SystemPrompt is the instruction sent with every generation request.
// It defaults to the embedded schema description; a file path overrides it.
type SystemPrompt struct {
	mu   sync.RWMutex
	path string
	text string
}

// NewSystemPrompt creates a prompt backed by path. Call Reload to read the
// file; until then, and whenever the file cannot be read, the embedded
// prompt is used.
func NewSystemPrompt(path string) *SystemPrompt {
	return &SystemPrompt{
		path: path,
		text: defaultPrompt,
	}
}

// Path returns the override file path, if any
func (p *SystemPrompt) Path() string {
	return p.path
}

// Text returns the current instruction
func (p *SystemPrompt) Text() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text
}

// Reload re-reads the override file. On failure the previous text is kept.
func (p *SystemPrompt) Reload() error {
	if p.path == "" {
		return nil
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("failed to read system prompt: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return fmt.Errorf("system prompt %s is empty", p.path)
	}

	p.mu.Lock()
	p.text = text
	p.mu.Unlock()
	return nil
}
