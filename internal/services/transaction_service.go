// Package services coordinates writes against the store: validation before
// any network call, then the write, then a change notification. Reads stay on
// the subscription path; these services never hand back optimistic copies.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/store"
)

// suggestionLimit caps note suggestions per category.
const suggestionLimit = 5

// EventPublisher pushes transaction change notifications. Nil disables
// publishing without disabling writes.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

// TransactionService validates and serializes transaction writes.
type TransactionService struct {
	store  store.TransactionStore
	events EventPublisher
}

func NewTransactionService(st store.TransactionStore, events EventPublisher) *TransactionService {
	return &TransactionService{store: st, events: events}
}

// Create validates the draft and persists it. Validation failures return
// core.FieldErrors before the store is touched; the caller keeps the draft
// either way so a failed submit can be retried without retyping.
func (s *TransactionService) Create(ctx context.Context, draft core.Draft) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}

	id, err := s.store.CreateTransaction(ctx, draft.Transaction())
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, amqp.ActionCreated, id, draft.OwnerID, draft.Kind)
	return id, nil
}

// Update replaces all mutable fields of a transaction at once. kind comes
// from the caller because it is immutable and governs the amount ceiling.
func (s *TransactionService) Update(ctx context.Context, ownerID, id string, kind core.Kind, change core.Change) error {
	if err := change.Validate(kind); err != nil {
		return err
	}

	if err := s.store.UpdateTransaction(ctx, ownerID, id, change); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, amqp.ActionUpdated, id, ownerID, kind)
	return nil
}

// Delete hard-deletes the transaction. No tombstone remains.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string, kind core.Kind) error {
	if err := s.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.ActionDeleted, id, ownerID, kind)
	return nil
}

// SuggestNotes returns recently used notes for the category, most recent
// first, for entry autocompletion.
func (s *TransactionService) SuggestNotes(ctx context.Context, ownerID, categoryID string) ([]string, error) {
	notes, err := s.store.RecentNotes(ctx, ownerID, categoryID, suggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("recent notes: %w", err)
	}
	return notes, nil
}

func (s *TransactionService) publish(ctx context.Context, action, id, ownerID string, kind core.Kind) {
	if s.events == nil {
		return
	}
	ev := amqp.NewTransactionEvent(action, id, ownerID, kind)
	if err := s.events.PublishTransactionEvent(ctx, ev); err != nil {
		// The write already succeeded; the next snapshot carries the change
		// regardless, so a lost notification is not a request failure.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action, "id", id, "error", err)
	}
}
