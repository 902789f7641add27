package repository

import (
	"context"

	"qompath/internal/domain"
)

// DraftRepository stores generated drafts for the current session
type DraftRepository interface {
	// SaveDraft inserts or replaces a draft
	SaveDraft(ctx context.Context, draft *domain.Draft) error
	// GetDraft returns nil, nil when no draft has the ID
	GetDraft(ctx context.Context, id string) (*domain.Draft, error)
	// LatestDraft returns the most recently settled draft, or nil
	LatestDraft(ctx context.Context) (*domain.Draft, error)
	// ListDrafts returns drafts, most recently settled first
	ListDrafts(ctx context.Context, limit int) ([]*domain.Draft, error)
	DeleteDraft(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
