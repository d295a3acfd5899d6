package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ssheladiya/graph-explorer/query"
)

// SearchSession runs keyword searches where only the latest one matters,
// such as searches issued while a user is still typing. Starting a search
// cancels the one in flight, whose caller receives an error matching both
// ErrSuperseded and context.Canceled.
type SearchSession struct {
	exec *Executor

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelCauseFunc
}

// NewSearchSession creates a SearchSession backed by exec.
func NewSearchSession(exec *Executor) *SearchSession {
	return &SearchSession{exec: exec}
}

// Search cancels any in-flight search and runs req.
func (s *SearchSession) Search(ctx context.Context, req query.KeywordSearchRequest) (*Result, error) {
	ctx, cancel := context.WithCancelCause(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
	}
	s.seq++
	id := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.seq == id {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel(nil)
	}()

	res, err := s.exec.KeywordSearch(ctx, req)
	if cause := context.Cause(ctx); errors.Is(cause, ErrSuperseded) {
		return nil, fmt.Errorf("%w: %w", ErrSuperseded, context.Canceled)
	}
	return res, err
}

// Cancel aborts the in-flight search, if any.
func (s *SearchSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel(ErrSuperseded)
		s.cancel = nil
	}
}
