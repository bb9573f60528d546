// Package credentials owns the process-wide credential state used to
// authorize elevated image requests and the selection flow that updates it.
package credentials

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Gate answers whether a credential is selected and can open the selection
// surface when one is needed.
type Gate interface {
	// HasCredential reports whether a credential has been selected. It never
	// opens the selection surface.
	HasCredential() bool
	// RequestCredential opens the selection surface and blocks until the
	// selection completes, is declined, times out, or ctx is done. It reports
	// whether a credential is selected afterwards.
	RequestCredential(ctx context.Context) bool
}

// Status is a read-only view of the credential state.
type Status struct {
	Selected     bool       `json:"selected"`
	KeyHint      string     `json:"key_hint,omitempty"`
	Ambient      bool       `json:"ambient"`
	Pending      bool       `json:"pending"`
	PendingSince *time.Time `json:"pending_since,omitempty"`
	Waiters      int        `json:"waiters,omitempty"`
}

type selection struct {
	done    chan struct{}
	result  bool
	opened  time.Time
	waiters int
}

// Store is the single writer of credential state. It implements Gate and
// supplies API keys to the image service.
type Store struct {
	timeout time.Duration
	ambient string
	logger  *slog.Logger

	mu       sync.Mutex
	selected string
	pending  *selection
}

// NewStore creates a Store. ambientKey is used for requests when no
// credential has been selected; it does not count as a selection.
func NewStore(ambientKey string, timeout time.Duration, logger *slog.Logger) *Store {
	return &Store{
		timeout: timeout,
		ambient: ambientKey,
		logger:  logger.With("system", "credentials"),
	}
}

func (s *Store) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected != ""
}

// APIKey returns the selected key, falling back to the ambient key.
func (s *Store) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected != "" {
		return s.selected
	}
	return s.ambient
}

func (s *Store) RequestCredential(ctx context.Context) bool {
	sel := s.open()

	var timer <-chan time.Time
	if s.timeout > 0 {
		t := time.NewTimer(s.timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case <-sel.done:
		return sel.result
	case <-timer:
		s.logger.Warn("credential selection timed out", "timeout", s.timeout)
		s.resolve(sel, false)
	case <-ctx.Done():
		s.leave(sel)
	}
	return s.HasCredential()
}

// Select stores key as the selected credential and completes any pending
// selection successfully.
func (s *Store) Select(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	s.selected = key
	sel := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.logger.Info("credential selected", "key_hint", hint(key), "resolved_pending", sel != nil)
	if sel != nil {
		sel.result = true
		close(sel.done)
	}
	return nil
}

// Decline completes the pending selection without a credential.
func (s *Store) Decline() error {
	s.mu.Lock()
	sel := s.pending
	s.mu.Unlock()

	if sel == nil {
		return ErrNoPendingRequest
	}
	s.resolve(sel, false)
	s.logger.Info("credential selection declined")
	return nil
}

// Clear forgets the selected credential.
func (s *Store) Clear() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
	s.logger.Info("credential cleared")
}

// Status returns the current credential state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Selected: s.selected != "",
		KeyHint:  hint(s.selected),
		Ambient:  s.ambient != "",
		Pending:  s.pending != nil,
	}
	if s.pending != nil {
		opened := s.pending.opened
		st.PendingSince = &opened
		st.Waiters = s.pending.waiters
	}
	return st
}

// open joins the pending selection or starts a new one.
func (s *Store) open() *selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		s.pending = &selection{done: make(chan struct{}), opened: time.Now()}
		s.logger.Info("credential selection opened")
	}
	s.pending.waiters++
	return s.pending
}

// leave withdraws one waiter and closes the selection when none remain.
func (s *Store) leave(sel *selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != sel {
		return
	}
	sel.waiters--
	if sel.waiters == 0 {
		s.resolveLocked(sel, false)
	}
}

func (s *Store) resolve(sel *selection, result bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolveLocked(sel, result)
}

func (s *Store) resolveLocked(sel *selection, result bool) {
	if s.pending != sel {
		return
	}
	s.pending = nil
	sel.result = result
	close(sel.done)
}

func hint(key string) string {
	if len(key) <= 4 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return "****" + key[len(key)-4:]
}
