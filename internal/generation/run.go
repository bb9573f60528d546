package generation

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/colorbook/internal/imagegen"
)

// Status is the lifecycle state of a generation run.
type Status string

const (
	StatusIdle               Status = "idle"
	StatusRunning            Status = "running"
	StatusAwaitingCredential Status = "awaiting_credential"
	StatusFailed             Status = "failed"
	StatusCompleted          Status = "completed"
	// StatusCancelled marks an aborted run in history. The orchestrator
	// itself reports idle once a run is discarded.
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further pages will be generated.
func (s Status) Terminal() bool {
	return s == StatusAwaitingCredential || s == StatusFailed || s == StatusCompleted || s == StatusCancelled
}

// Request describes a coloring book to generate.
type Request struct {
	Theme string        `json:"theme"`
	Owner string        `json:"owner"`
	Tier  imagegen.Tier `json:"tier"`
	Pages int           `json:"pages"`
}

// Artifact is one generated page image.
type Artifact struct {
	Index     int
	Data      []byte
	MediaType string
	Prompt    string
}

// PageInfo describes a generated page without its image data.
type PageInfo struct {
	Index     int    `json:"index"`
	Prompt    string `json:"prompt"`
	MediaType string `json:"media_type"`
	Size      int    `json:"size"`
}

// Snapshot is a read-only view of the current run.
type Snapshot struct {
	ID           uuid.UUID     `json:"id"`
	Status       Status        `json:"status"`
	Theme        string        `json:"theme,omitempty"`
	Owner        string        `json:"owner,omitempty"`
	Tier         imagegen.Tier `json:"tier,omitempty"`
	Pages        int           `json:"pages"`
	// Completed and Progress count pages generated so far. They never fall
	// back when a failed run discards its artifacts.
	Completed    int           `json:"completed"`
	CurrentIndex int           `json:"current_index"`
	Progress     float64       `json:"progress"`
	Message      string        `json:"message,omitempty"`
	Artifacts    []PageInfo    `json:"artifacts"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
}

type run struct {
	id         uuid.UUID
	req        Request
	status     Status
	message    string
	artifacts  []Artifact
	current    int
	startedAt  time.Time
	finishedAt time.Time
	discarded  bool
}

func (r *run) snapshot() Snapshot {
	s := Snapshot{
		ID:           r.id,
		Status:       r.status,
		Theme:        r.req.Theme,
		Owner:        r.req.Owner,
		Tier:         r.req.Tier,
		Pages:        r.req.Pages,
		Completed:    r.current,
		CurrentIndex: r.current,
		Message:      r.message,
		Artifacts:    make([]PageInfo, len(r.artifacts)),
	}

	if r.req.Pages > 0 {
		s.Progress = float64(r.current) / float64(r.req.Pages)
	}

	for i, a := range r.artifacts {
		s.Artifacts[i] = PageInfo{
			Index:     a.Index,
			Prompt:    a.Prompt,
			MediaType: a.MediaType,
			Size:      len(a.Data),
		}
	}

	started := r.startedAt
	s.StartedAt = &started
	if !r.finishedAt.IsZero() {
		finished := r.finishedAt
		s.FinishedAt = &finished
	}
	return s
}

func (r *run) finish(status Status, message string) {
	r.status = status
	r.message = message
	r.finishedAt = time.Now()
	if status != StatusCompleted {
		r.artifacts = nil
	}
}

func idleSnapshot() Snapshot {
	return Snapshot{Status: StatusIdle, Artifacts: []PageInfo{}}
}
