package sqlite

import (
	"database/sql"
	"time"

	"qompath/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// timeToUnix stores times as unix nanoseconds so ordering is exact
func timeToUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// unixToTime is the inverse of timeToUnix
func unixToTime(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// ============================================================================
// Draft Row Scanner
// ============================================================================

// draftColumns is the SELECT column list for draft queries.
// MUST match draftRow.scanArgs() and draftInsertArgs() order.
const draftColumns = `id, prompt, status, text, error, created_at, settled_at`

// draftRow holds all columns from a draft query for scanning
type draftRow struct {
	ID        string
	Prompt    string
	Status    string
	Text      sql.NullString
	Error     sql.NullString
	CreatedAt int64
	SettledAt int64
}

// scanArgs returns pointers to all fields for sql.Scan()
func (r *draftRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,        // 1
		&r.Prompt,    // 2
		&r.Status,    // 3
		&r.Text,      // 4
		&r.Error,     // 5
		&r.CreatedAt, // 6
		&r.SettledAt, // 7
	}
}

// toDomain converts the scanned row to a domain.Draft
func (r *draftRow) toDomain() *domain.Draft {
	return &domain.Draft{
		ID:        r.ID,
		Prompt:    r.Prompt,
		Status:    domain.DraftStatus(r.Status),
		Text:      nullToString(r.Text),
		Error:     nullToString(r.Error),
		CreatedAt: unixToTime(r.CreatedAt),
		SettledAt: unixToTime(r.SettledAt),
	}
}

// draftInsertArgs returns the values for an INSERT using draftColumns
func draftInsertArgs(d *domain.Draft) []interface{} {
	return []interface{}{
		d.ID,
		d.Prompt,
		string(d.Status),
		stringToNull(d.Text),
		stringToNull(d.Error),
		timeToUnix(d.CreatedAt),
		timeToUnix(d.SettledAt),
	}
}
