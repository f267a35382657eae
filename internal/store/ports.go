// Package store defines the outbound contract against the document store:
// live filtered subscriptions plus whole-record writes. Backends deliver the
// complete current matching set on every change, never deltas.
package store

import (
	"context"
	"errors"

	"tally/internal/core"
)

var (
	// ErrNotFound reports a write against an id the store does not hold.
	ErrNotFound = errors.New("record not found")
	// ErrPermissionDenied reports an owner mismatch or a store-side denial.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnavailable reports a transport failure. Subscriptions surface it
	// once and stop; retrying is the caller's decision.
	ErrUnavailable = errors.New("store unavailable")
)

type (
	// TransactionFilter selects one owner's records of one kind with
	// OccurredAt inside Window (both bounds inclusive).
	TransactionFilter struct {
		OwnerID string
		Kind    core.Kind
		Window  core.Window
	}

	// CategoryFilter selects one owner's custom categories, optionally
	// narrowed to one kind.
	CategoryFilter struct {
		OwnerID string
		Kind    core.Kind // empty means both kinds
	}

	// SnapshotFunc receives the complete current matching set. Each call
	// fully supersedes the previous one.
	SnapshotFunc func(txs []core.Transaction)

	// CategorySnapshotFunc is SnapshotFunc for the categories collection.
	CategorySnapshotFunc func(cats []core.Category)

	// ErrorFunc receives a subscription failure. After it fires the
	// subscription stops emitting.
	ErrorFunc func(err error)
)

// Matches reports whether tx satisfies the filter.
func (f TransactionFilter) Matches(tx core.Transaction) bool {
	return tx.OwnerID == f.OwnerID && tx.Kind == f.Kind && f.Window.Contains(tx.OccurredAt)
}

// Matches reports whether c satisfies the filter.
func (f CategoryFilter) Matches(c core.Category) bool {
	if c.OwnerID != f.OwnerID {
		return false
	}
	return f.Kind == "" || c.Kind == f.Kind
}

// Subscription is a live query handle. Close is idempotent and guarantees no
// callback fires after it returns.
type Subscription interface {
	Close()
}

// TransactionStore is the transactions collection: one live subscription
// contract plus whole-record writes. Updates replace all mutable fields at
// once; conflicting concurrent edits resolve last-write-wins at the store.
type TransactionStore interface {
	SubscribeTransactions(ctx context.Context, filter TransactionFilter, onSnapshot SnapshotFunc, onError ErrorFunc) (Subscription, error)
	CreateTransaction(ctx context.Context, tx core.Transaction) (string, error)
	UpdateTransaction(ctx context.Context, ownerID, id string, change core.Change) error
	DeleteTransaction(ctx context.Context, ownerID, id string) error

	// RecentNotes returns up to limit distinct notes previously used with
	// categoryID, most recent first. Used for entry suggestions.
	RecentNotes(ctx context.Context, ownerID, categoryID string, limit int) ([]string, error)
}

// CategoryStore is the categories collection. Deleting a category never
// touches transactions referencing it.
type CategoryStore interface {
	SubscribeCategories(ctx context.Context, filter CategoryFilter, onSnapshot CategorySnapshotFunc, onError ErrorFunc) (Subscription, error)
	ListCategories(ctx context.Context, ownerID string, kind core.Kind) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (string, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, ownerID, id string) error
}

// Store is the full backend surface selected by the factory.
type Store interface {
	TransactionStore
	CategoryStore
}
