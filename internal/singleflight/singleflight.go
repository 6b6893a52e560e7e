// Package singleflight coalesces concurrent loads of the same key.
package singleflight

import (
	"context"
	"fmt"
	"sync"
)

// Group runs at most one fn per key at a time. Callers that arrive while a
// load for their key is in flight wait for it and share its result.
//
// Cancelling ctx unblocks only the waiting follower; the leader's fn keeps
// running. Thread ctx into fn if the work itself must stop.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed once val/err are published
	val  V
	err  error
	dups int
}

// Do runs fn for key unless a call for key is already in flight, in which
// case it waits for that call. shared reports whether the result came from
// (or was handed to) another caller. A panic in fn is turned into an error
// for the followers and re-raised in the leader.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err(), true
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	normal := false
	defer func() {
		if !normal {
			c.err = fmt.Errorf("singleflight: load for %v panicked", key)
		}
		g.mu.Lock()
		delete(g.m, key)
		shared = c.dups > 0
		g.mu.Unlock()
		close(c.done)
	}()

	c.val, c.err = fn()
	normal = true
	return c.val, c.err, shared
}
