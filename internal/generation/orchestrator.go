// Package generation drives a coloring book run: it validates the request,
// clears elevated tiers through the credential gate, issues one image request
// per page strictly in order, and owns the run's progress and artifacts.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/colorbook/internal/credentials"
	"github.com/JaimeStill/colorbook/internal/imagegen"
	"github.com/JaimeStill/colorbook/internal/pages"
)

const recordTimeout = 5 * time.Second

// Runner executes background work bound to the service lifetime.
// *lifecycle.Coordinator satisfies it.
type Runner interface {
	Go(fn func(ctx context.Context))
}

// Recorder persists run metadata. Failures are logged and never affect the run.
type Recorder interface {
	RunStarted(ctx context.Context, s Snapshot) error
	RunFinished(ctx context.Context, s Snapshot) error
}

// Config bounds generation requests.
type Config struct {
	MaxPages     int
	DefaultPages int
	DefaultTier  imagegen.Tier
}

// Orchestrator owns the single active generation run.
type Orchestrator struct {
	cfg      Config
	gate     credentials.Gate
	images   imagegen.Generator
	runner   Runner
	recorder Recorder
	logger   *slog.Logger

	mu       sync.RWMutex
	run      *run
	last     *Request
	starting bool
	drained  chan struct{}
}

// New creates an Orchestrator. recorder may be nil.
func New(
	cfg Config,
	gate credentials.Gate,
	images imagegen.Generator,
	runner Runner,
	recorder Recorder,
	logger *slog.Logger,
) *Orchestrator {
	drained := make(chan struct{})
	close(drained)

	return &Orchestrator{
		cfg:      cfg,
		gate:     gate,
		images:   images,
		runner:   runner,
		recorder: recorder,
		logger:   logger.With("system", "generation"),
		drained:  drained,
	}
}

// Start validates req, runs the credential pre-flight for elevated tiers, and
// begins generating pages in the background. A declined pre-flight returns
// ErrCredentialDeclined without creating a run or contacting the image service.
func (o *Orchestrator) Start(ctx context.Context, req Request) (*Snapshot, error) {
	req, err := o.normalize(req)
	if err != nil {
		return nil, err
	}

	if err := o.reserve(); err != nil {
		return nil, err
	}
	defer o.release()

	if req.Tier.Elevated() && !o.gate.HasCredential() {
		o.logger.Info("elevated tier requires credential", "tier", req.Tier)
		if !o.gate.RequestCredential(ctx) {
			return nil, ErrCredentialDeclined
		}
	}

	requests, err := pages.Build(req.Theme, req.Pages)
	if err != nil {
		return nil, err
	}

	if err := o.awaitDrain(ctx); err != nil {
		return nil, err
	}

	r := &run{
		id:        uuid.New(),
		req:       req,
		status:    StatusRunning,
		startedAt: time.Now(),
	}
	drained := make(chan struct{})

	o.mu.Lock()
	o.run = r
	last := req
	o.last = &last
	o.drained = drained
	snap := r.snapshot()
	o.mu.Unlock()

	o.logger.Info(
		"generation started",
		"run_id", r.id,
		"theme", req.Theme,
		"tier", req.Tier,
		"pages", req.Pages,
	)

	o.runner.Go(func(ctx context.Context) {
		needsCredential := func() bool {
			defer close(drained)
			o.record(ctx, snap, o.recorderStarted)
			return o.generate(ctx, r, requests)
		}()

		if needsCredential {
			selected := o.gate.RequestCredential(ctx)
			o.logger.Info("credential recovery finished", "run_id", r.id, "selected", selected)
		}
	})

	return &snap, nil
}

// Retry restarts the most recent request from its first page.
func (o *Orchestrator) Retry(ctx context.Context) (*Snapshot, error) {
	o.mu.RLock()
	last := o.last
	o.mu.RUnlock()

	if last == nil {
		return nil, ErrNoActiveRun
	}
	return o.Start(ctx, *last)
}

// Abort discards the current run. A running run stops issuing requests once
// the in-flight request resolves; its artifacts are never exposed.
func (o *Orchestrator) Abort() error {
	o.mu.Lock()
	r := o.run
	if r == nil {
		o.mu.Unlock()
		return ErrNoActiveRun
	}
	r.discarded = true
	wasRunning := r.status == StatusRunning
	if wasRunning {
		r.finish(StatusCancelled, "Generation was cancelled.")
	}
	o.run = nil
	o.mu.Unlock()

	o.logger.Info("generation discarded", "run_id", r.id, "was_running", wasRunning)
	return nil
}

// Snapshot returns a read-only view of the current run, or an idle snapshot.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.run == nil {
		return idleSnapshot()
	}
	return o.run.snapshot()
}

// Artifacts returns the ordered artifacts of a completed run.
func (o *Orchestrator) Artifacts() ([]Artifact, Snapshot, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.run == nil {
		return nil, idleSnapshot(), ErrNoActiveRun
	}
	if o.run.status != StatusCompleted {
		return nil, o.run.snapshot(), ErrRunNotComplete
	}
	return slices.Clone(o.run.artifacts), o.run.snapshot(), nil
}

// Page returns a single generated page of the current run for preview.
func (o *Orchestrator) Page(index int) (*Artifact, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.run == nil {
		return nil, ErrNoActiveRun
	}
	if index < 0 || index >= len(o.run.artifacts) {
		return nil, ErrPageNotFound
	}
	a := o.run.artifacts[index]
	return &a, nil
}

// Release discards the completed run identified by id after its document
// has been delivered.
func (o *Orchestrator) Release(id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.run == nil || o.run.id != id {
		return ErrNoActiveRun
	}
	if o.run.status != StatusCompleted {
		return ErrRunNotComplete
	}
	o.run.discarded = true
	o.run = nil
	o.logger.Info("generation released", "run_id", id)
	return nil
}

// generate issues page requests in index order. It reports whether the run
// ended on a credential failure.
func (o *Orchestrator) generate(ctx context.Context, r *run, requests []pages.Request) bool {
	total := len(requests)

	for _, req := range requests {
		if o.stopIfDiscarded(ctx, r) {
			return false
		}

		payload, err := o.images.Generate(ctx, req.Prompt, r.req.Tier)

		o.mu.Lock()
		if r.discarded {
			o.mu.Unlock()
			o.stopIfDiscarded(ctx, r)
			return false
		}
		if err != nil {
			return o.fail(ctx, r, req.Index, total, err)
		}

		r.artifacts = append(r.artifacts, Artifact{
			Index:     req.Index,
			Data:      payload.Data,
			MediaType: payload.MediaType,
			Prompt:    req.Prompt,
		})
		r.current = req.Index + 1
		o.mu.Unlock()

		o.logger.Info("page generated", "run_id", r.id, "index", req.Index, "progress", fmt.Sprintf("%d/%d", req.Index+1, total))
	}

	o.mu.Lock()
	r.finish(StatusCompleted, "")
	snap := r.snapshot()
	o.mu.Unlock()

	o.logger.Info("generation completed", "run_id", r.id, "pages", total)
	o.record(ctx, snap, o.recorderFinished)
	return false
}

// fail ends the run on a page failure. The caller holds o.mu; fail releases it.
func (o *Orchestrator) fail(ctx context.Context, r *run, index, total int, err error) bool {
	message := fmt.Sprintf("Page %d of %d: %s", index+1, total, UserMessage(err))

	status := StatusFailed
	if errors.Is(err, imagegen.ErrCredentialRequired) {
		status = StatusAwaitingCredential
	}

	r.finish(status, message)
	snap := r.snapshot()
	o.mu.Unlock()

	if status == StatusAwaitingCredential {
		o.logger.Warn("generation needs credential", "run_id", r.id, "index", index, "error", err)
	} else {
		o.logger.Error("generation failed", "run_id", r.id, "index", index, "error", err)
	}
	o.record(ctx, snap, o.recorderFinished)
	return status == StatusAwaitingCredential
}

// stopIfDiscarded reports whether r was aborted, recording the cancellation.
func (o *Orchestrator) stopIfDiscarded(ctx context.Context, r *run) bool {
	o.mu.RLock()
	discarded := r.discarded
	snap := r.snapshot()
	o.mu.RUnlock()

	if !discarded {
		return false
	}
	o.logger.Info("discarded run stopped", "run_id", r.id, "completed", snap.Completed)
	o.record(ctx, snap, o.recorderFinished)
	return true
}

func (o *Orchestrator) normalize(req Request) (Request, error) {
	req.Theme = strings.TrimSpace(req.Theme)
	req.Owner = strings.TrimSpace(req.Owner)

	if req.Tier == "" {
		req.Tier = o.cfg.DefaultTier
	}
	if req.Pages == 0 {
		req.Pages = o.cfg.DefaultPages
	}

	switch {
	case req.Theme == "":
		return req, fmt.Errorf("%w: theme is required", ErrInvalidInput)
	case req.Owner == "":
		return req, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	case req.Pages < 1 || req.Pages > o.cfg.MaxPages:
		return req, fmt.Errorf("%w: pages must be between 1 and %d", ErrInvalidInput, o.cfg.MaxPages)
	}

	tier, err := imagegen.ParseTier(string(req.Tier))
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.Tier = tier
	return req, nil
}

// reserve claims the right to start a run.
func (o *Orchestrator) reserve() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.starting || (o.run != nil && o.run.status == StatusRunning) {
		return ErrRunInProgress
	}
	o.starting = true
	return nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.starting = false
	o.mu.Unlock()
}

// awaitDrain waits for a discarded run's in-flight request to resolve so that
// at most one request is outstanding.
func (o *Orchestrator) awaitDrain(ctx context.Context) error {
	o.mu.RLock()
	drained := o.drained
	o.mu.RUnlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) recorderStarted(ctx context.Context, s Snapshot) error {
	return o.recorder.RunStarted(ctx, s)
}

func (o *Orchestrator) recorderFinished(ctx context.Context, s Snapshot) error {
	return o.recorder.RunFinished(ctx, s)
}

func (o *Orchestrator) record(ctx context.Context, s Snapshot, fn func(context.Context, Snapshot) error) {
	if o.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := fn(ctx, s); err != nil {
		o.logger.Warn("run history not recorded", "run_id", s.ID, "status", s.Status, "error", err)
	}
}
