// Package stream manages the live transaction feed a view holds open: one
// subscription at a time, swapped atomically when the window or kind changes.
package stream

import (
	"context"
	"sync"

	"tally/internal/core"
	"tally/internal/store"
)

// Stream owns at most one live subscription against the transaction store.
// Open replaces the current subscription; snapshots from a superseded
// subscription are discarded even if they race the swap. After a subscription
// error the stream goes quiet until the next Open.
type Stream struct {
	src store.TransactionStore

	onSnapshot store.SnapshotFunc
	onError    store.ErrorFunc

	mu     sync.Mutex
	gen    uint64
	sub    store.Subscription
	failed bool
}

// New returns a stream delivering snapshots to onSnapshot, newest first and
// deduplicated by id. onError may be nil.
func New(src store.TransactionStore, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) *Stream {
	return &Stream{src: src, onSnapshot: onSnapshot, onError: onError}
}

// Open subscribes with the given filter, tearing down any previous
// subscription first. The initial snapshot for the new filter arrives before
// Open returns when the backend delivers synchronously.
func (s *Stream) Open(ctx context.Context, filter store.TransactionFilter) error {
	s.mu.Lock()
	if s.sub != nil {
		s.sub.Close()
		s.sub = nil
	}
	s.gen++
	s.failed = false
	gen := s.gen
	s.mu.Unlock()

	sub, err := s.src.SubscribeTransactions(ctx, filter,
		func(txs []core.Transaction) { s.deliver(gen, txs) },
		func(err error) { s.fail(gen, err) },
	)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.gen != gen {
		// A concurrent Open or Close superseded us.
		s.mu.Unlock()
		sub.Close()
		return nil
	}
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// Close tears down the current subscription. Idempotent; no snapshot is
// delivered after it returns.
func (s *Stream) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.gen++
	s.mu.Unlock()
	if sub != nil {
		sub.Close()
	}
}

func (s *Stream) deliver(gen uint64, txs []core.Transaction) {
	s.mu.Lock()
	if gen != s.gen || s.failed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.onSnapshot(normalize(txs))
}

func (s *Stream) fail(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.gen || s.failed {
		s.mu.Unlock()
		return
	}
	s.failed = true
	s.mu.Unlock()
	if s.onError != nil {
		s.onError(err)
	}
}

// normalize sorts newest first and drops duplicate ids, keeping the first
// occurrence. Backends should not produce duplicates, but a poll racing a
// write can.
func normalize(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	core.SortNewestFirst(out)

	seen := make(map[string]struct{}, len(out))
	kept := out[:0]
	for _, tx := range out {
		if _, dup := seen[tx.ID]; dup {
			continue
		}
		seen[tx.ID] = struct{}{}
		kept = append(kept, tx)
	}
	return kept
}

// FetchOnce runs a point-in-time query by opening a subscription, keeping its
// initial snapshot and closing it. Reports used for export go through here.
func FetchOnce(ctx context.Context, src store.TransactionStore, filter store.TransactionFilter) ([]core.Transaction, error) {
	done := make(chan struct{})
	var (
		result  []core.Transaction
		failure error
		once    sync.Once
	)

	sub, err := src.SubscribeTransactions(ctx, filter,
		func(txs []core.Transaction) {
			once.Do(func() {
				result = normalize(txs)
				close(done)
			})
		},
		func(err error) {
			once.Do(func() {
				failure = err
				close(done)
			})
		},
	)
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	select {
	case <-done:
		return result, failure
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
