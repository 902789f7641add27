// Package repository defines the data access interfaces for Qompath.
//
// The only state kept outside the live graph is the side document buffer:
// drafts produced by the generator that the user may inspect, fix, and
// apply. The live graph itself is owned by the store package and is never
// persisted here.
//
// # SQLite Implementation
//
// The sqlite subpackage implements DraftRepository on an in-memory SQLite
// database (modernc.org/sqlite, no cgo). Drafts are session-scoped; nothing
// is written to disk.
package repository
