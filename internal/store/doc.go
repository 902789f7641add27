// Package store holds the canonical, in-memory scene graph for a session.
//
// Store is the sole owner of node and edge identity. It exposes the mutation
// primitives the editor needs (add/remove node, connect/disconnect, field
// edits, whole-graph replacement) and keeps every Render node's derived
// geometry and light lists consistent with the live edge set after each
// mutation.
//
// # Synchronization
//
// Derived lists are recomputed from the full edge set for every Render node
// an operation touches, then written back in one batch. Each non-empty
// mutation bumps the store revision exactly once, so observers never see a
// half-updated graph.
//
// # Failure Semantics
//
// Operations that reference an unknown node or edge are silent no-ops and
// return an empty Change. Only field edits that target derived data or a
// field the node does not have return errors.
package store
