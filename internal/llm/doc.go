// Package llm talks to the external text-generation service that drafts
// scene documents from a free-text prompt.
//
// A Completer sends a system instruction and a user prompt and returns the
// generated text. Two implementations are provided: OpenAICompleter for the
// OpenAI chat completion API, and LangChainCompleter for any provider that
// langchaingo supports (Ollama is wired by default).
//
// Errors are classified so callers can report them faithfully:
//
//   - ErrMissingCredential: no API key configured, no request was made
//   - *UpstreamError: the service answered with a non-success status
//   - *TransportError: the request never got an answer
//
// StripFences removes the Markdown code fences models tend to wrap their
// output in. SystemPrompt holds the instruction describing the document
// schema; it ships embedded and may be overridden by a file on disk.
package llm
