// Package books exposes the active coloring book over HTTP and delivers its
// assembled document.
package books

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JaimeStill/colorbook/internal/assembly"
	"github.com/JaimeStill/colorbook/internal/generation"
	"github.com/JaimeStill/colorbook/pkg/formatting"
	"github.com/JaimeStill/colorbook/pkg/storage"
)

// Books is the orchestrator surface served over HTTP.
// *generation.Orchestrator satisfies it.
type Books interface {
	Start(ctx context.Context, req generation.Request) (*generation.Snapshot, error)
	Retry(ctx context.Context) (*generation.Snapshot, error)
	Abort() error
	Snapshot() generation.Snapshot
	Artifacts() ([]generation.Artifact, generation.Snapshot, error)
	Page(index int) (*generation.Artifact, error)
	Release(id uuid.UUID) error
}

// DocumentRecorder records where a run's document was exported.
type DocumentRecorder interface {
	AttachDocument(ctx context.Context, id uuid.UUID, key string) error
}

// Config controls document retention and export.
type Config struct {
	DocumentTTL  time.Duration
	Export       bool
	ExportPrefix string
}

// Delivery is an assembled document ready to download.
type Delivery struct {
	RunID     uuid.UUID
	Document  *assembly.Document
	ExportKey string
}

// Publisher assembles completed runs, keeps the result in memory for the
// session, optionally exports it to storage, and releases the run.
type Publisher struct {
	cfg     Config
	books   Books
	store   storage.System
	history DocumentRecorder
	cache   *cache.Cache
	group   singleflight.Group
	logger  *slog.Logger
}

// NewPublisher creates a Publisher. store and history may be nil.
func NewPublisher(
	cfg Config,
	books Books,
	store storage.System,
	history DocumentRecorder,
	logger *slog.Logger,
) *Publisher {
	return &Publisher{
		cfg:     cfg,
		books:   books,
		store:   store,
		history: history,
		cache:   cache.New(cfg.DocumentTTL, cfg.DocumentTTL),
		logger:  logger.With("system", "books"),
	}
}

// Deliver assembles the completed run into a document and releases the run.
// Concurrent calls for the same run share one assembly. A run that has not
// completed holds an incomplete artifact set and cannot be assembled.
func (p *Publisher) Deliver(ctx context.Context) (*Delivery, error) {
	artifacts, snap, err := p.books.Artifacts()
	if errors.Is(err, generation.ErrRunNotComplete) {
		return nil, fmt.Errorf("%w: %w", assembly.ErrIncompleteArtifactSet, err)
	}
	if err != nil {
		return nil, err
	}

	val, err, _ := p.group.Do(snap.ID.String(), func() (any, error) {
		if cached, ok := p.cache.Get(snap.ID.String()); ok {
			return cached, nil
		}
		return p.deliver(ctx, artifacts, snap)
	})
	if err != nil {
		return nil, err
	}

	d, ok := val.(*Delivery)
	if !ok {
		return nil, fmt.Errorf("unexpected delivery type: %T", val)
	}
	return d, nil
}

// Cached returns a document delivered earlier in the session.
func (p *Publisher) Cached(id uuid.UUID) (*Delivery, error) {
	val, ok := p.cache.Get(id.String())
	if !ok {
		return nil, ErrDocumentExpired
	}
	return val.(*Delivery), nil
}

func (p *Publisher) deliver(ctx context.Context, artifacts []generation.Artifact, snap generation.Snapshot) (*Delivery, error) {
	doc, err := assembly.Assemble(artifacts, Title(snap.Theme), snap.Owner)
	if err != nil {
		return nil, err
	}

	d := &Delivery{RunID: snap.ID, Document: doc}
	if p.cfg.Export && p.store != nil {
		d.ExportKey = p.export(ctx, snap.ID, doc)
	}

	p.cache.Set(snap.ID.String(), d, cache.DefaultExpiration)

	if err := p.books.Release(snap.ID); err != nil && !errors.Is(err, generation.ErrNoActiveRun) {
		p.logger.Warn("run not released", "run_id", snap.ID, "error", err)
	}

	p.logger.Info(
		"document delivered",
		"run_id", snap.ID,
		"pages", doc.PageCount,
		"size", formatting.FormatBytes(int64(len(doc.Data)), 1),
		"export_key", d.ExportKey,
	)
	return d, nil
}

// export writes doc to storage and records its key. Failures are logged and
// reported as an empty key; the download still succeeds.
func (p *Publisher) export(ctx context.Context, id uuid.UUID, doc *assembly.Document) string {
	key := path.Join(p.cfg.ExportPrefix, id.String(), doc.Filename())

	if err := p.store.Upload(ctx, key, bytes.NewReader(doc.Data), assembly.ContentType); err != nil {
		p.logger.Warn("document export failed", "run_id", id, "key", key, "error", err)
		return ""
	}

	if p.history != nil {
		if err := p.history.AttachDocument(ctx, id, key); err != nil {
			p.logger.Warn("document key not recorded", "run_id", id, "key", key, "error", err)
		}
	}
	return key
}

// Title formats a theme as a book title.
func Title(theme string) string {
	return cases.Title(language.Und).String(theme)
}
