package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/store"
	"tally/internal/store/memory"
)

type recordingPublisher struct {
	events []*amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, ev *amqp.TransactionEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func validDraft() core.Draft {
	return core.Draft{
		OwnerID:    "u1",
		Kind:       core.Expense,
		Amount:     core.Money{Cents: 1250},
		CategoryID: "food",
		Note:       "lunch",
		OccurredAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local),
	}
}

func TestCreateValidatesBeforeWrite(t *testing.T) {
	mem := memory.New()
	pub := &recordingPublisher{}
	svc := NewTransactionService(mem, pub)

	draft := validDraft()
	draft.Amount = core.Money{Cents: 0}

	_, err := svc.Create(context.Background(), draft)
	var fieldErrs core.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("want FieldErrors, got %v", err)
	}
	if _, ok := fieldErrs["amount"]; !ok {
		t.Errorf("missing amount field error: %v", fieldErrs)
	}
	if len(pub.events) != 0 {
		t.Error("invalid draft must never reach the store or the broker")
	}
}

func TestCreatePublishesEvent(t *testing.T) {
	mem := memory.New()
	pub := &recordingPublisher{}
	svc := NewTransactionService(mem, pub)

	id, err := svc.Create(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "" {
		t.Fatal("Create() returned empty id")
	}
	if len(pub.events) != 1 {
		t.Fatalf("got %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Action != amqp.ActionCreated || ev.ID != id || ev.OwnerID != "u1" {
		t.Errorf("event = %+v", ev)
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	mem := memory.New()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewTransactionService(mem, pub)

	if _, err := svc.Create(context.Background(), validDraft()); err != nil {
		t.Fatalf("Create() must not fail on publish error, got %v", err)
	}
}

func TestCreateWithoutPublisher(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)
	if _, err := svc.Create(context.Background(), validDraft()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestUpdateValidatesBeforeWrite(t *testing.T) {
	mem := memory.New()
	svc := NewTransactionService(mem, nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	bad := core.Change{Amount: core.Money{Cents: -5}}
	err = svc.Update(ctx, "u1", id, core.Expense, bad)
	var fieldErrs core.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("want FieldErrors, got %v", err)
	}
	for _, f := range []string{"amount", "category_id", "note"} {
		if _, ok := fieldErrs[f]; !ok {
			t.Errorf("missing %s field error: %v", f, fieldErrs)
		}
	}

	good := core.Change{Amount: core.Money{Cents: 900}, CategoryID: "food", Note: "groceries"}
	if err := svc.Update(ctx, "u1", id, core.Expense, good); err != nil {
		t.Fatalf("valid change must pass: %v", err)
	}
}

func TestUpdateValidatesCeilingPerKind(t *testing.T) {
	mem := memory.New()
	svc := NewTransactionService(mem, nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	over := core.Change{Amount: core.Money{Cents: core.MaxExpenseCents + 1}, CategoryID: "food", Note: "too big"}
	err = svc.Update(ctx, "u1", id, core.Expense, over)
	var fieldErrs core.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("want FieldErrors, got %v", err)
	}

	// The same amount is fine for income.
	incomeDraft := validDraft()
	incomeDraft.Kind = core.Income
	incomeDraft.CategoryID = "salary"
	incomeID, err := svc.Create(ctx, incomeDraft)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Update(ctx, "u1", incomeID, core.Income, over); err != nil {
		t.Fatalf("Update() income error = %v", err)
	}
}

func TestUpdateWrapsStoreError(t *testing.T) {
	svc := NewTransactionService(memory.New(), nil)
	change := core.Change{Amount: core.Money{Cents: 100}, CategoryID: "food", Note: "ok"}

	err := svc.Update(context.Background(), "u1", "missing", core.Expense, change)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("want ErrNotFound through the wrap, got %v", err)
	}
}

func TestDeletePublishesEvent(t *testing.T) {
	mem := memory.New()
	pub := &recordingPublisher{}
	svc := NewTransactionService(mem, pub)
	ctx := context.Background()

	id, err := svc.Create(ctx, validDraft())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Delete(ctx, "u1", id, core.Expense); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	last := pub.events[len(pub.events)-1]
	if last.Action != amqp.ActionDeleted || last.ID != id {
		t.Errorf("last event = %+v", last)
	}
}

func TestSuggestNotes(t *testing.T) {
	mem := memory.New()
	svc := NewTransactionService(mem, nil)
	ctx := context.Background()

	notes := []string{"coffee", "lunch", "coffee", "dinner", "snack", "brunch", "tea"}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	for i, n := range notes {
		d := validDraft()
		d.Note = n
		d.OccurredAt = base.AddDate(0, 0, i)
		if _, err := svc.Create(ctx, d); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	got, err := svc.SuggestNotes(ctx, "u1", "food")
	if err != nil {
		t.Fatalf("SuggestNotes() error = %v", err)
	}
	if len(got) != suggestionLimit {
		t.Fatalf("got %d suggestions, want %d", len(got), suggestionLimit)
	}
	if got[0] != "tea" {
		t.Errorf("most recent first: got %q", got[0])
	}
}
