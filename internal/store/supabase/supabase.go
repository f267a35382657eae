// Package supabase is the hosted backend over PostgREST. The REST API has no
// push channel, so subscriptions poll: each one re-runs its query on an
// interval, compares against the last delivered snapshot and pushes only on
// change. Local writes kick every poller immediately so the caller still sees
// its own write on the next snapshot without waiting out the interval.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/supabase-community/supabase-go"

	"tally/internal/core"
	"tally/internal/store"
)

const defaultPollInterval = 3 * time.Second

type Store struct {
	client *supabase.Client
	poll   time.Duration

	mu      sync.Mutex
	nextID  int
	kickers map[int]chan struct{}
}

func New(url, key string, pollInterval time.Duration) (*Store, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Store{
		client:  client,
		poll:    pollInterval,
		kickers: make(map[int]chan struct{}),
	}, nil
}

type txRow struct {
	ID          string    `json:"id,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	CategoryID  string    `json:"category_id"`
	Note        string    `json:"note"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

func (r txRow) transaction() core.Transaction {
	return core.Transaction{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Kind:       core.Kind(r.Kind),
		Amount:     core.Money{Cents: r.AmountCents},
		CategoryID: r.CategoryID,
		Note:       r.Note,
		OccurredAt: r.OccurredAt.Local(),
		CreatedAt:  r.CreatedAt.Local(),
	}
}

type catRow struct {
	ID        string    `json:"id,omitempty"`
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (r catRow) category() core.Category {
	return core.Category{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Kind:      core.Kind(r.Kind),
		Name:      r.Name,
		Icon:      r.Icon,
		Color:     r.Color,
		CreatedAt: r.CreatedAt.Local(),
	}
}

func (s *Store) SubscribeTransactions(ctx context.Context, filter store.TransactionFilter, onSnapshot store.SnapshotFunc, onError store.ErrorFunc) (store.Subscription, error) {
	fetch := func() (any, error) {
		txs, err := s.fetchTransactions(filter)
		return txs, err
	}
	push := func(v any) { onSnapshot(v.([]core.Transaction)) }
	return s.subscribe(ctx, fetch, push, onError)
}

func (s *Store) SubscribeCategories(ctx context.Context, filter store.CategoryFilter, onSnapshot store.CategorySnapshotFunc, onError store.ErrorFunc) (store.Subscription, error) {
	fetch := func() (any, error) {
		cats, err := s.fetchCategories(filter)
		return cats, err
	}
	push := func(v any) { onSnapshot(v.([]core.Category)) }
	return s.subscribe(ctx, fetch, push, onError)
}

type poller struct {
	mu     sync.Mutex
	closed bool
}

type subscription struct {
	once sync.Once
	stop func()
}

func (s *subscription) Close() { s.once.Do(s.stop) }

// subscribe runs the initial fetch synchronously, then polls until closed.
// One fetch failure delivers onError and ends the loop; the caller decides
// whether to resubscribe.
func (s *Store) subscribe(ctx context.Context, fetch func() (any, error), push func(any), onError store.ErrorFunc) (store.Subscription, error) {
	initial, err := fetch()
	if err != nil {
		return nil, err
	}

	p := &poller{}
	deliver := func(v any) bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return false
		}
		push(v)
		return true
	}
	fail := func(err error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.closed && onError != nil {
			onError(err)
		}
		p.closed = true
	}

	deliver(initial)
	last, _ := json.Marshal(initial)

	kick := make(chan struct{}, 1)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.kickers[id] = kick
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-kick:
			}

			v, err := fetch()
			if err != nil {
				fail(err)
				return
			}
			current, _ := json.Marshal(v)
			if string(current) == string(last) {
				continue
			}
			last = current
			if !deliver(v) {
				return
			}
		}
	}()

	return &subscription{stop: func() {
		s.mu.Lock()
		delete(s.kickers, id)
		s.mu.Unlock()
		close(done)
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
	}}, nil
}

// kickAll wakes every poller so local writes surface immediately.
func (s *Store) kickAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kick := range s.kickers {
		select {
		case kick <- struct{}{}:
		default:
		}
	}
}

func (s *Store) fetchTransactions(f store.TransactionFilter) ([]core.Transaction, error) {
	data, _, err := s.client.From("transactions").
		Select("*", "", false).
		Eq("owner_id", f.OwnerID).
		Eq("kind", string(f.Kind)).
		Gte("occurred_at", f.Window.Start.UTC().Format(time.RFC3339Nano)).
		Lte("occurred_at", f.Window.End.UTC().Format(time.RFC3339Nano)).
		Order("occurred_at.desc", nil).
		Execute()
	if err != nil {
		return nil, classify(err, "get transactions")
	}

	var rows []txRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse transactions: %w", err)
	}
	txs := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, r.transaction())
	}
	return txs, nil
}

func (s *Store) fetchCategories(f store.CategoryFilter) ([]core.Category, error) {
	query := s.client.From("categories").
		Select("*", "", false).
		Eq("owner_id", f.OwnerID)
	if f.Kind != "" {
		query = query.Eq("kind", string(f.Kind))
	}
	data, _, err := query.Order("created_at.asc", nil).Execute()
	if err != nil {
		return nil, classify(err, "get categories")
	}

	var rows []catRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	cats := make([]core.Category, 0, len(rows))
	for _, r := range rows {
		cats = append(cats, r.category())
	}
	return cats, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (string, error) {
	row := txRow{
		OwnerID:     tx.OwnerID,
		Kind:        string(tx.Kind),
		AmountCents: tx.Amount.Cents,
		CategoryID:  tx.CategoryID,
		Note:        tx.Note,
		OccurredAt:  tx.OccurredAt.UTC(),
	}

	data, _, err := s.client.From("transactions").Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return "", classify(err, "create transaction")
	}

	var created []txRow
	if err := json.Unmarshal(data, &created); err != nil {
		return "", fmt.Errorf("parse created transaction: %w", err)
	}
	if len(created) == 0 {
		return "", fmt.Errorf("create transaction: empty response")
	}

	s.kickAll()
	return created[0].ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, ownerID, id string, change core.Change) error {
	if err := s.checkOwner("transactions", ownerID, id); err != nil {
		return err
	}

	fields := map[string]any{
		"amount_cents": change.Amount.Cents,
		"category_id":  change.CategoryID,
		"note":         change.Note,
	}
	_, _, err := s.client.From("transactions").
		Update(fields, "", "").
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return classify(err, "update transaction")
	}

	s.kickAll()
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	if err := s.checkOwner("transactions", ownerID, id); err != nil {
		return err
	}

	_, _, err := s.client.From("transactions").
		Delete("", "").
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return classify(err, "delete transaction")
	}

	s.kickAll()
	return nil
}

func (s *Store) RecentNotes(_ context.Context, ownerID, categoryID string, limit int) ([]string, error) {
	// PostgREST has no distinct-on; over-fetch and dedupe client side.
	data, _, err := s.client.From("transactions").
		Select("note", "", false).
		Eq("owner_id", ownerID).
		Eq("category_id", categoryID).
		Order("occurred_at.desc", nil).
		Limit(limit*10, "").
		Execute()
	if err != nil {
		return nil, classify(err, "get recent notes")
	}

	var rows []struct {
		Note string `json:"note"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse notes: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	var notes []string
	for _, r := range rows {
		if _, dup := seen[r.Note]; dup {
			continue
		}
		seen[r.Note] = struct{}{}
		notes = append(notes, r.Note)
		if len(notes) == limit {
			break
		}
	}
	return notes, nil
}

func (s *Store) ListCategories(_ context.Context, ownerID string, kind core.Kind) ([]core.Category, error) {
	return s.fetchCategories(store.CategoryFilter{OwnerID: ownerID, Kind: kind})
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (string, error) {
	row := catRow{
		OwnerID: c.OwnerID,
		Kind:    string(c.Kind),
		Name:    c.Name,
		Icon:    c.Icon,
		Color:   c.Color,
	}

	data, _, err := s.client.From("categories").Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return "", classify(err, "create category")
	}

	var created []catRow
	if err := json.Unmarshal(data, &created); err != nil {
		return "", fmt.Errorf("parse created category: %w", err)
	}
	if len(created) == 0 {
		return "", fmt.Errorf("create category: empty response")
	}

	s.kickAll()
	return created[0].ID, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	if err := s.checkOwner("categories", c.OwnerID, c.ID); err != nil {
		return err
	}

	fields := map[string]any{
		"name":  c.Name,
		"icon":  c.Icon,
		"color": c.Color,
	}
	_, _, err := s.client.From("categories").
		Update(fields, "", "").
		Eq("id", c.ID).
		Eq("owner_id", c.OwnerID).
		Execute()
	if err != nil {
		return classify(err, "update category")
	}

	s.kickAll()
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id string) error {
	if err := s.checkOwner("categories", ownerID, id); err != nil {
		return err
	}

	_, _, err := s.client.From("categories").
		Delete("", "").
		Eq("id", id).
		Eq("owner_id", ownerID).
		Execute()
	if err != nil {
		return classify(err, "delete category")
	}

	s.kickAll()
	return nil
}

func (s *Store) checkOwner(table, ownerID, id string) error {
	data, _, err := s.client.From(table).
		Select("owner_id", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return classify(err, "lookup "+table)
	}

	var rows []struct {
		OwnerID string `json:"owner_id"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parse %s lookup: %w", table, err)
	}
	if len(rows) == 0 {
		return store.ErrNotFound
	}
	if rows[0].OwnerID != ownerID {
		return store.ErrPermissionDenied
	}
	return nil
}

// classify maps PostgREST failures onto the store error taxonomy.
func classify(err error, op string) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission") || strings.Contains(msg, "401") || strings.Contains(msg, "403") || strings.Contains(msg, "jwt"):
		return fmt.Errorf("%s: %w: %v", op, store.ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, store.ErrUnavailable, err)
	}
}

var _ store.Store = (*Store)(nil)
