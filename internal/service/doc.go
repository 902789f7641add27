// Package service implements business logic for the Qompath scene editor.
//
// This package provides service layers that coordinate between the HTTP
// handlers, the in-memory graph store and the draft repository,
// implementing validation and event publishing.
//
// # Services
//
// SceneService wraps the graph store: node and edge edits, viewport
// changes, and whole-document import/export via the codec package. An
// import parses the complete document first and only then replaces the
// graph, so a broken document never leaves a half-applied scene.
//
// GenerationService drafts scene documents from free text through an
// llm.Completer. Prompts are validated before any network call. Results
// are recorded as drafts in the side buffer and never touch the live graph
// until ApplyDraft is called. When two requests overlap, the one that
// settles last is the latest draft.
//
// # Event System
//
// Services publish events via EventBus for real-time updates to connected
// clients via Server-Sent Events (SSE). Graph events carry the store
// revision they produced; no-op mutations publish nothing.
package service
