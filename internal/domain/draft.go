package domain

import "time"

// DraftStatus is the outcome of a generation request
type DraftStatus string

const (
	// DraftReady holds a document that parsed cleanly
	DraftReady DraftStatus = "ready"
	// DraftInvalid holds generated text that is not a valid document
	DraftInvalid DraftStatus = "invalid"
	// DraftFailed records a request that produced no text
	DraftFailed DraftStatus = "failed"
)

// Draft is a generated document waiting in the side buffer. It never
// reaches the live graph unless the user applies it.
type Draft struct {
	ID        string      `json:"id"`
	Prompt    string      `json:"prompt"`
	Status    DraftStatus `json:"status"`
	Text      string      `json:"text,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	SettledAt time.Time   `json:"settledAt"`
}

// Applicable reports whether the draft can replace the live graph
func (d *Draft) Applicable() bool {
	return d.Status == DraftReady && d.Text != ""
}
