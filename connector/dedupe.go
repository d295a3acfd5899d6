package connector

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Dedupe returns a Fetcher that collapses concurrent fetches of the same
// query text into one call to f. Every waiter receives its own copy of the
// body.
//
// The shared call keeps the values of the first caller's context but not its
// cancellation. A waiter whose context ends returns ctx.Err() at once without
// disturbing the others; the shared call is cancelled only when every waiter
// has gone.
func Dedupe(f Fetcher) Fetcher {
	d := &deduper{fetcher: f, inflight: make(map[string]*sharedCall)}
	return FetcherFunc(d.fetch)
}

type deduper struct {
	fetcher Fetcher
	group   singleflight.Group

	mu       sync.Mutex
	inflight map[string]*sharedCall
}

// sharedCall is the context of one in-flight query and the number of
// callers still waiting on it.
type sharedCall struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func (d *deduper) fetch(ctx context.Context, query string) ([]byte, error) {
	d.mu.Lock()
	call, ok := d.inflight[query]
	if !ok {
		callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		call = &sharedCall{ctx: callCtx, cancel: cancel}
		d.inflight[query] = call
	}
	call.waiters++
	ch := d.group.DoChan(query, func() (any, error) {
		defer d.finish(query, call)
		return d.fetcher.Fetch(call.ctx, query)
	})
	d.mu.Unlock()

	select {
	case r := <-ch:
		d.leave(query, call)
		if r.Err != nil {
			return nil, r.Err
		}
		body, _ := r.Val.([]byte)
		return append([]byte(nil), body...), nil
	case <-ctx.Done():
		d.leave(query, call)
		return nil, ctx.Err()
	}
}

// finish retires call once its fetch has returned, so the next caller
// starts a fresh one.
func (d *deduper) finish(query string, call *sharedCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inflight[query] == call {
		delete(d.inflight, query)
	}
}

// leave drops one waiter. The last one out cancels the shared fetch and
// forgets it, so a later caller never joins a cancelled call.
func (d *deduper) leave(query string, call *sharedCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	call.waiters--
	if call.waiters > 0 {
		return
	}
	call.cancel()
	if d.inflight[query] == call {
		delete(d.inflight, query)
		d.group.Forget(query)
	}
}
