package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"qompath/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.DraftRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates an in-memory SQLite repository. Each process gets its own
// database that disappears on Close.
func New() (*Repository, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS drafts (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		status TEXT NOT NULL,
		text TEXT,
		error TEXT,
		created_at INTEGER NOT NULL,
		settled_at INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_drafts_settled ON drafts(settled_at, seq);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveDraft inserts or replaces a draft. seq breaks ties between drafts
// settled within the same clock tick.
func (r *Repository) SaveDraft(ctx context.Context, d *domain.Draft) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drafts (`+draftColumns+`, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM drafts))
		ON CONFLICT(id) DO UPDATE SET
			prompt = excluded.prompt,
			status = excluded.status,
			text = excluded.text,
			error = excluded.error,
			created_at = excluded.created_at,
			settled_at = excluded.settled_at,
			seq = excluded.seq
	`, draftInsertArgs(d)...)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// GetDraft retrieves a single draft by ID
func (r *Repository) GetDraft(ctx context.Context, id string) (*domain.Draft, error) {
	var row draftRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+draftColumns+` FROM drafts WHERE id = ?
	`, id).Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query draft: %w", err)
	}
	return row.toDomain(), nil
}

// LatestDraft returns the most recently settled draft
func (r *Repository) LatestDraft(ctx context.Context) (*domain.Draft, error) {
	drafts, err := r.ListDrafts(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, nil
	}
	return drafts[0], nil
}

// ListDrafts returns up to limit drafts, newest first. A non-positive limit
// returns all of them.
func (r *Repository) ListDrafts(ctx context.Context, limit int) ([]*domain.Draft, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+draftColumns+` FROM drafts
		ORDER BY settled_at DESC, seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	drafts := make([]*domain.Draft, 0)
	for rows.Next() {
		var row draftRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating drafts: %w", err)
	}
	return drafts, nil
}

// DeleteDraft removes a draft
func (r *Repository) DeleteDraft(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
