// Package sqlite is the embedded single-node backend. Live subscriptions are
// local: every successful write re-runs each open subscription's query and
// pushes the fresh snapshot, which is exact because this process is the only
// writer of its database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tally/internal/core"
	"tally/internal/store"
)

type Store struct {
	db *sql.DB

	mu          sync.Mutex
	nextSubID   int
	txWatchers  map[int]*txWatcher
	catWatchers map[int]*catWatcher
}

type txWatcher struct {
	filter store.TransactionFilter
	fn     store.SnapshotFunc

	mu     sync.Mutex
	closed bool
}

func (w *txWatcher) deliver(txs []core.Transaction) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.fn(txs)
	}
}

type catWatcher struct {
	filter store.CategoryFilter
	fn     store.CategorySnapshotFunc

	mu     sync.Mutex
	closed bool
}

func (w *catWatcher) deliver(cats []core.Category) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.fn(cats)
	}
}

type subscription struct {
	once  sync.Once
	unsub func()
}

func (s *subscription) Close() { s.once.Do(s.unsub) }

// Open opens (creating if needed) the database at dbPath and applies pending
// migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:          db,
		txWatchers:  make(map[int]*txWatcher),
		catWatchers: make(map[int]*catWatcher),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SubscribeTransactions(ctx context.Context, filter store.TransactionFilter, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) (store.Subscription, error) {
	initial, err := s.queryTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	w := &txWatcher{filter: filter, fn: onSnapshot}
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.txWatchers[id] = w
	s.mu.Unlock()

	w.deliver(initial)

	return &subscription{unsub: func() {
		s.mu.Lock()
		delete(s.txWatchers, id)
		s.mu.Unlock()
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
	}}, nil
}

func (s *Store) SubscribeCategories(ctx context.Context, filter store.CategoryFilter, onSnapshot store.CategorySnapshotFunc, onError store.ErrorFunc) (store.Subscription, error) {
	initial, err := s.queryCategories(ctx, filter)
	if err != nil {
		return nil, err
	}

	w := &catWatcher{filter: filter, fn: onSnapshot}
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.catWatchers[id] = w
	s.mu.Unlock()

	w.deliver(initial)

	return &subscription{unsub: func() {
		s.mu.Lock()
		delete(s.catWatchers, id)
		s.mu.Unlock()
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
	}}, nil
}

// notifyTransactions re-queries and pushes every open transaction
// subscription. Writes are rare relative to reads, so recomputing each
// snapshot on write stays cheap.
func (s *Store) notifyTransactions(ctx context.Context) {
	s.mu.Lock()
	watchers := make([]*txWatcher, 0, len(s.txWatchers))
	for _, w := range s.txWatchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()

	for _, w := range watchers {
		txs, err := s.queryTransactions(ctx, w.filter)
		if err != nil {
			continue
		}
		w.deliver(txs)
	}
}

func (s *Store) notifyCategories(ctx context.Context) {
	s.mu.Lock()
	watchers := make([]*catWatcher, 0, len(s.catWatchers))
	for _, w := range s.catWatchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()

	for _, w := range watchers {
		cats, err := s.queryCategories(ctx, w.filter)
		if err != nil {
			continue
		}
		w.deliver(cats)
	}
}

func (s *Store) queryTransactions(ctx context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, kind, amount_cents, category_id, note, occurred_at, created_at
		FROM transactions
		WHERE owner_id = ? AND kind = ? AND occurred_at BETWEEN ? AND ?
		ORDER BY occurred_at DESC, id DESC`,
		f.OwnerID, string(f.Kind), f.Window.Start.UnixMilli(), f.Window.End.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx                   core.Transaction
			kind                 string
			occurredMS, createMS int64
		)
		if err := rows.Scan(&tx.ID, &tx.OwnerID, &kind, &tx.Amount.Cents, &tx.CategoryID, &tx.Note, &occurredMS, &createMS); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Kind = core.Kind(kind)
		tx.OccurredAt = time.UnixMilli(occurredMS)
		tx.CreatedAt = time.UnixMilli(createMS)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *Store) queryCategories(ctx context.Context, f store.CategoryFilter) ([]core.Category, error) {
	query := `
		SELECT id, owner_id, kind, name, icon, color, created_at
		FROM categories
		WHERE owner_id = ?`
	args := []any{f.OwnerID}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, string(f.Kind))
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var (
			c        core.Category
			kind     string
			createMS int64
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &kind, &c.Name, &c.Icon, &c.Color, &createMS); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.Kind(kind)
		c.CreatedAt = time.UnixMilli(createMS)
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *Store) CreateTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	tx.ID = uuid.New().String()
	tx.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, kind, amount_cents, category_id, note, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, string(tx.Kind), tx.Amount.Cents, tx.CategoryID, tx.Note,
		tx.OccurredAt.UnixMilli(), tx.CreatedAt.UnixMilli())
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	s.notifyTransactions(ctx)
	return tx.ID, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, ownerID, id string, change core.Change) error {
	if err := s.checkTransactionOwner(ctx, ownerID, id); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET amount_cents = ?, category_id = ?, note = ?
		WHERE id = ?`,
		change.Amount.Cents, change.CategoryID, change.Note, id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.notifyTransactions(ctx)
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := s.checkTransactionOwner(ctx, ownerID, id); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.notifyTransactions(ctx)
	return nil
}

func (s *Store) RecentNotes(ctx context.Context, ownerID, categoryID string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT note FROM transactions
		WHERE owner_id = ? AND category_id = ?
		GROUP BY note
		ORDER BY MAX(occurred_at) DESC
		LIMIT ?`,
		ownerID, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent notes: %w", err)
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var note string
		if err := rows.Scan(&note); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context, ownerID string, kind core.Kind) ([]core.Category, error) {
	return s.queryCategories(ctx, store.CategoryFilter{OwnerID: ownerID, Kind: kind})
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (string, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, kind, name, icon, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, string(c.Kind), c.Name, c.Icon, c.Color, c.CreatedAt.UnixMilli())
	if err != nil {
		return "", fmt.Errorf("insert category: %w", err)
	}

	s.notifyCategories(ctx)
	return c.ID, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := s.checkCategoryOwner(ctx, c.OwnerID, c.ID); err != nil {
		return err
	}

	// Kind and created_at are immutable.
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, icon = ?, color = ?
		WHERE id = ?`,
		c.Name, c.Icon, c.Color, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	s.notifyCategories(ctx)
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, ownerID, id string) error {
	if err := s.checkCategoryOwner(ctx, ownerID, id); err != nil {
		return err
	}

	// Transactions referencing the category are deliberately left alone.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.notifyCategories(ctx)
	return nil
}

func (s *Store) checkTransactionOwner(ctx context.Context, ownerID, id string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM transactions WHERE id = ?`, id).Scan(&owner)
	switch {
	case err == sql.ErrNoRows:
		return store.ErrNotFound
	case err != nil:
		return fmt.Errorf("lookup transaction: %w", err)
	case owner != ownerID:
		return store.ErrPermissionDenied
	}
	return nil
}

func (s *Store) checkCategoryOwner(ctx context.Context, ownerID, id string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM categories WHERE id = ?`, id).Scan(&owner)
	switch {
	case err == sql.ErrNoRows:
		return store.ErrNotFound
	case err != nil:
		return fmt.Errorf("lookup category: %w", err)
	case owner != ownerID:
		return store.ErrPermissionDenied
	}
	return nil
}

var _ store.Store = (*Store)(nil)
