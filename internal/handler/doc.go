// Package handler implements HTTP request handlers for the Qompath API.
//
// # Handlers
//
// SceneHandler handles the scene graph: nodes, edges, viewport, document
// import/export and render previews.
//
// GenerateHandler drafts documents from free-text prompts and manages the
// draft buffer. Generation never changes the scene; applying a draft does.
//
// Middleware provides request logging, panic recovery, and CORS support.
//
// # Response Format
//
// Mutations return the store Change they produced. A mutation naming an
// unknown node or edge is not an error: it returns an empty change with
// revision 0. Error responses return JSON with {error, details}.
//
// POST /api/generate-json keeps the editor's contract: {json} on success,
// {error, rawContent?} on failure, with the upstream status propagated.
//
// # Server-Sent Events
//
// The /events endpoint streams service events, each carrying the revision
// it produced.
package handler
