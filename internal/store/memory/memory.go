// Package memory is an in-process store backend. Every mutation pushes the
// complete current matching set to each live subscription synchronously,
// which makes it the reference backend for tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/store"
)

type Store struct {
	mu   sync.Mutex
	txs  map[string]core.Transaction
	cats map[string]core.Category

	nextWatcher int
	txWatchers  map[int]*txWatcher
	catWatchers map[int]*catWatcher
}

func New() *Store {
	return &Store{
		txs:         make(map[string]core.Transaction),
		cats:        make(map[string]core.Category),
		txWatchers:  make(map[int]*txWatcher),
		catWatchers: make(map[int]*catWatcher),
	}
}

var _ store.Store = (*Store)(nil)

// txWatcher serializes deliveries per subscription; once closed it swallows
// any late push, so no callback can fire after Close returns.
type txWatcher struct {
	mu         sync.Mutex
	closed     bool
	filter     store.TransactionFilter
	onSnapshot store.SnapshotFunc
}

func (w *txWatcher) deliver(txs []core.Transaction) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.onSnapshot(txs)
}

func (w *txWatcher) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

type catWatcher struct {
	mu         sync.Mutex
	closed     bool
	filter     store.CategoryFilter
	onSnapshot store.CategorySnapshotFunc
}

func (w *catWatcher) deliver(cats []core.Category) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.onSnapshot(cats)
}

func (w *catWatcher) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

type subscription struct {
	once  sync.Once
	unsub func()
}

func (s *subscription) Close() {
	s.once.Do(s.unsub)
}

func (s *Store) SubscribeTransactions(_ context.Context, filter store.TransactionFilter, onSnapshot store.SnapshotFunc, _ store.ErrorFunc) (store.Subscription, error) {
	w := &txWatcher{filter: filter, onSnapshot: onSnapshot}

	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.txWatchers[id] = w
	initial := s.matchTransactions(filter)
	s.mu.Unlock()

	// Initial full view before any change notification.
	w.deliver(initial)

	return &subscription{unsub: func() {
		s.mu.Lock()
		delete(s.txWatchers, id)
		s.mu.Unlock()
		w.close()
	}}, nil
}

func (s *Store) SubscribeCategories(_ context.Context, filter store.CategoryFilter, onSnapshot store.CategorySnapshotFunc, _ store.ErrorFunc) (store.Subscription, error) {
	w := &catWatcher{filter: filter, onSnapshot: onSnapshot}

	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.catWatchers[id] = w
	initial := s.matchCategories(filter)
	s.mu.Unlock()

	w.deliver(initial)

	return &subscription{unsub: func() {
		s.mu.Lock()
		delete(s.catWatchers, id)
		s.mu.Unlock()
		w.close()
	}}, nil
}

// matchTransactions must be called with s.mu held.
func (s *Store) matchTransactions(filter store.TransactionFilter) []core.Transaction {
	var out []core.Transaction
	for _, tx := range s.txs {
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	core.SortNewestFirst(out)
	return out
}

// matchCategories must be called with s.mu held.
func (s *Store) matchCategories(filter store.CategoryFilter) []core.Category {
	var out []core.Category
	for _, c := range s.cats {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out
}

// notifyTransactions recomputes and pushes snapshots for every affected
// watcher. Snapshots are computed under the store lock; delivery happens
// outside it so handlers may call back into the store.
func (s *Store) notifyTransactions(affected core.Transaction) {
	type push struct {
		w    *txWatcher
		snap []core.Transaction
	}
	s.mu.Lock()
	var pushes []push
	for _, w := range s.txWatchers {
		if w.filter.OwnerID != affected.OwnerID || w.filter.Kind != affected.Kind {
			continue
		}
		pushes = append(pushes, push{w: w, snap: s.matchTransactions(w.filter)})
	}
	s.mu.Unlock()

	for _, p := range pushes {
		p.w.deliver(p.snap)
	}
}

func (s *Store) notifyCategories(affected core.Category) {
	type push struct {
		w    *catWatcher
		snap []core.Category
	}
	s.mu.Lock()
	var pushes []push
	for _, w := range s.catWatchers {
		if w.filter.OwnerID != affected.OwnerID {
			continue
		}
		pushes = append(pushes, push{w: w, snap: s.matchCategories(w.filter)})
	}
	s.mu.Unlock()

	for _, p := range pushes {
		p.w.deliver(p.snap)
	}
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (string, error) {
	tx.ID = uuid.New().String()
	tx.CreatedAt = time.Now()

	s.mu.Lock()
	s.txs[tx.ID] = tx
	s.mu.Unlock()

	s.notifyTransactions(tx)
	return tx.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, ownerID, id string, change core.Change) error {
	s.mu.Lock()
	tx, ok := s.txs[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if tx.OwnerID != ownerID {
		s.mu.Unlock()
		return store.ErrPermissionDenied
	}
	tx.Amount = change.Amount
	tx.CategoryID = change.CategoryID
	tx.Note = change.Note
	s.txs[id] = tx
	s.mu.Unlock()

	s.notifyTransactions(tx)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	tx, ok := s.txs[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if tx.OwnerID != ownerID {
		s.mu.Unlock()
		return store.ErrPermissionDenied
	}
	delete(s.txs, id)
	s.mu.Unlock()

	s.notifyTransactions(tx)
	return nil
}

func (s *Store) RecentNotes(_ context.Context, ownerID, categoryID string, limit int) ([]string, error) {
	s.mu.Lock()
	var matching []core.Transaction
	for _, tx := range s.txs {
		if tx.OwnerID == ownerID && tx.CategoryID == categoryID {
			matching = append(matching, tx)
		}
	}
	s.mu.Unlock()

	core.SortNewestFirst(matching)
	seen := make(map[string]struct{})
	var notes []string
	for _, tx := range matching {
		if _, ok := seen[tx.Note]; ok {
			continue
		}
		seen[tx.Note] = struct{}{}
		notes = append(notes, tx.Note)
		if limit > 0 && len(notes) >= limit {
			break
		}
	}
	return notes, nil
}

func (s *Store) ListCategories(_ context.Context, ownerID string, kind core.Kind) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.matchCategories(store.CategoryFilter{OwnerID: ownerID, Kind: kind})
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (string, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()

	s.mu.Lock()
	s.cats[c.ID] = c
	s.mu.Unlock()

	s.notifyCategories(c)
	return c.ID, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	existing, ok := s.cats[c.ID]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if existing.OwnerID != c.OwnerID {
		s.mu.Unlock()
		return store.ErrPermissionDenied
	}
	c.CreatedAt = existing.CreatedAt
	c.Kind = existing.Kind
	s.cats[c.ID] = c
	s.mu.Unlock()

	s.notifyCategories(c)
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	c, ok := s.cats[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if c.OwnerID != ownerID {
		s.mu.Unlock()
		return store.ErrPermissionDenied
	}
	delete(s.cats, id)
	s.mu.Unlock()

	// Transactions referencing the category are left untouched.
	s.notifyCategories(c)
	return nil
}
