package runs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/colorbook/internal/generation"
	"github.com/JaimeStill/colorbook/pkg/database"
	"github.com/JaimeStill/colorbook/pkg/lifecycle"
	"github.com/JaimeStill/colorbook/pkg/pagination"
	"github.com/JaimeStill/colorbook/pkg/repository"
)

type repo struct {
	db         *sql.DB
	ready      lifecycle.ReadinessChecker
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a run history repository implementing the System interface.
// Every operation returns database.ErrNotReady until ready reports true.
func New(
	db *sql.DB,
	ready lifecycle.ReadinessChecker,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		ready:      ready,
		logger:     logger.With("system", "runs"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Run], error) {
	if !r.ready.Ready() {
		return nil, database.ErrNotReady
	}

	page.Normalize(r.pagination)
	where, args := Where(page, filters)

	var total int
	countSQL := "SELECT COUNT(*) FROM runs" + where
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	pageSQL := fmt.Sprintf(
		"SELECT %s FROM runs%s ORDER BY started_at DESC LIMIT $%d OFFSET $%d",
		columns, where, len(args)+1, len(args)+2,
	)
	pageArgs := append(args, page.PageSize, page.Offset())

	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Run, error) {
	if !r.ready.Ready() {
		return nil, database.ErrNotReady
	}

	q := "SELECT " + columns + " FROM runs WHERE id = $1"
	run, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanRun)
	if err != nil {
		return nil, dbErrors.Map(err)
	}
	return &run, nil
}

func (r *repo) AttachDocument(ctx context.Context, id uuid.UUID, key string) error {
	if !r.ready.Ready() {
		return database.ErrNotReady
	}

	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE runs SET document_key = $2 WHERE id = $1",
		id, key,
	)
	if err != nil {
		return dbErrors.Map(err)
	}

	r.logger.Info("document attached", "id", id, "key", key)
	return nil
}

func (r *repo) RunStarted(ctx context.Context, s generation.Snapshot) error {
	if !r.ready.Ready() {
		return database.ErrNotReady
	}

	q := `
		INSERT INTO runs(id, theme, owner, tier, page_count, completed_pages, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8::timestamptz, now()))`

	_, err := r.db.ExecContext(
		ctx, q,
		s.ID, s.Theme, s.Owner, string(s.Tier), s.Pages, s.Completed, string(s.Status), startedAt(s),
	)
	if err != nil {
		return dbErrors.Map(err)
	}
	return nil
}

// RunFinished records the terminal state. completed_pages counts the pages
// generated before the run ended, even when their images were discarded.
func (r *repo) RunFinished(ctx context.Context, s generation.Snapshot) error {
	if !r.ready.Ready() {
		return database.ErrNotReady
	}

	var message *string
	if s.Message != "" {
		message = &s.Message
	}

	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE runs
		 SET status = $2, completed_pages = $3, message = $4, finished_at = $5
		 WHERE id = $1`,
		s.ID, string(s.Status), s.CurrentIndex, message, s.FinishedAt,
	)
	if err != nil {
		return dbErrors.Map(err)
	}

	r.logger.Info("run recorded", "id", s.ID, "status", s.Status)
	return nil
}

func startedAt(s generation.Snapshot) any {
	if s.StartedAt == nil {
		return nil
	}
	return *s.StartedAt
}
