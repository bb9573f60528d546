package runs

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/colorbook/internal/generation"
	"github.com/JaimeStill/colorbook/pkg/pagination"
)

// System defines the public contract for run history operations.
// It also records orchestrator transitions as a generation.Recorder.
type System interface {
	generation.Recorder

	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Run], error)

	Find(ctx context.Context, id uuid.UUID) (*Run, error)
	AttachDocument(ctx context.Context, id uuid.UUID, key string) error
}
