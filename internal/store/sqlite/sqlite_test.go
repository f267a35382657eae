package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/core"
	"tally/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testTx(owner string, cents int64, day int) core.Transaction {
	return core.Transaction{
		OwnerID:    owner,
		Kind:       core.Expense,
		Amount:     core.Money{Cents: cents},
		CategoryID: "food",
		Note:       "test entry",
		OccurredAt: time.Date(2024, 3, day, 10, 0, 0, 0, time.Local),
	}
}

func testFilter(owner string) store.TransactionFilter {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.Local)
	return store.TransactionFilter{OwnerID: owner, Kind: core.Expense, Window: core.MonthRange(now, 0)}
}

func TestTransactionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateTransaction(ctx, testTx("u1", 1250, 15))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	txs, err := s.queryTransactions(ctx, testFilter("u1"))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	got := txs[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, core.Expense, got.Kind)
	assert.Equal(t, int64(1250), got.Amount.Cents)
	assert.Equal(t, "food", got.CategoryID)
	assert.Equal(t, "test entry", got.Note)
	assert.Equal(t, 15, got.OccurredAt.Day())
}

func TestSubscriptionFollowsWrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var last []core.Transaction
	count := 0
	sub, err := s.SubscribeTransactions(ctx, testFilter("u1"), func(txs []core.Transaction) {
		last = txs
		count++
	}, nil)
	require.NoError(t, err)
	defer sub.Close()
	require.Equal(t, 1, count)
	require.Empty(t, last)

	id, err := s.CreateTransaction(ctx, testTx("u1", 500, 10))
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Len(t, last, 1)

	require.NoError(t, s.UpdateTransaction(ctx, "u1", id, core.Change{Amount: core.Money{Cents: 900}, CategoryID: "grocery", Note: "weekly shop"}))
	require.Equal(t, 3, count)
	assert.Equal(t, int64(900), last[0].Amount.Cents)
	assert.Equal(t, "grocery", last[0].CategoryID)

	require.NoError(t, s.DeleteTransaction(ctx, "u1", id))
	require.Equal(t, 4, count)
	assert.Empty(t, last)
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	count := 0
	sub, err := s.SubscribeTransactions(ctx, testFilter("u1"), func([]core.Transaction) { count++ }, nil)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	sub.Close()
	sub.Close()

	_, err = s.CreateTransaction(ctx, testTx("u1", 100, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOwnerChecks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateTransaction(ctx, testTx("u1", 100, 10))
	require.NoError(t, err)

	change := core.Change{Amount: core.Money{Cents: 1}, CategoryID: "food", Note: "ok"}
	assert.ErrorIs(t, s.UpdateTransaction(ctx, "intruder", id, change), store.ErrPermissionDenied)
	assert.ErrorIs(t, s.UpdateTransaction(ctx, "u1", "missing", change), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTransaction(ctx, "intruder", id), store.ErrPermissionDenied)

	// Other owners never see the record either.
	txs, err := s.queryTransactions(ctx, testFilter("intruder"))
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestWindowBoundsInclusive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := testFilter("u1")
	edge := testTx("u1", 100, 1)
	edge.OccurredAt = f.Window.End
	_, err := s.CreateTransaction(ctx, edge)
	require.NoError(t, err)

	past := testTx("u1", 100, 1)
	past.OccurredAt = f.Window.End.Add(time.Millisecond)
	_, err = s.CreateTransaction(ctx, past)
	require.NoError(t, err)

	txs, err := s.queryTransactions(ctx, f)
	require.NoError(t, err)
	assert.Len(t, txs, 1, "end bound is inclusive, one past it is not")
}

func TestRecentNotesDedupe(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, note := range []string{"coffee", "lunch", "coffee", "dinner"} {
		tx := testTx("u1", 100, 10+i)
		tx.Note = note
		_, err := s.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}

	notes, err := s.RecentNotes(ctx, "u1", "food", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"dinner", "coffee"}, notes)
}

func TestCategoryLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var last []core.Category
	sub, err := s.SubscribeCategories(ctx, store.CategoryFilter{OwnerID: "u1", Kind: core.Expense}, func(cats []core.Category) {
		last = cats
	}, nil)
	require.NoError(t, err)
	defer sub.Close()

	id, err := s.CreateCategory(ctx, core.Category{OwnerID: "u1", Kind: core.Expense, Name: "Coffee", Icon: "☕", Color: "brown"})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "Coffee", last[0].Name)

	require.NoError(t, s.UpdateCategory(ctx, core.Category{ID: id, OwnerID: "u1", Name: "Espresso"}))
	assert.Equal(t, "Espresso", last[0].Name)
	assert.Equal(t, core.Expense, last[0].Kind, "kind is immutable")

	require.NoError(t, s.DeleteCategory(ctx, "u1", id))
	assert.Empty(t, last)
}
