// Package runs keeps a metadata-only history of generation runs.
// Page images are never stored.
package runs

import (
	"time"

	"github.com/google/uuid"
)

// Run is the persisted record of one generation run.
type Run struct {
	ID             uuid.UUID  `json:"id"`
	Theme          string     `json:"theme"`
	Owner          string     `json:"owner"`
	Tier           string     `json:"tier"`
	PageCount      int        `json:"page_count"`
	CompletedPages int        `json:"completed_pages"`
	Status         string     `json:"status"`
	Message        *string    `json:"message,omitempty"`
	DocumentKey    *string    `json:"document_key,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}
