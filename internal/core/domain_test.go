package core

import (
	"strings"
	"testing"
	"time"
)

func validDraft() Draft {
	return Draft{
		OwnerID:    "u1",
		Kind:       Expense,
		Amount:     Money{Cents: 500},
		CategoryID: "food",
		Note:       "lunch",
		OccurredAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local),
	}
}

func TestDraftValidate(t *testing.T) {
	if err := validDraft().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Draft)
		field  string
	}{
		{"missing owner", func(d *Draft) { d.OwnerID = "" }, "owner_id"},
		{"bad kind", func(d *Draft) { d.Kind = "transfer" }, "kind"},
		{"zero amount", func(d *Draft) { d.Amount = Money{} }, "amount"},
		{"negative amount", func(d *Draft) { d.Amount = Money{Cents: -1} }, "amount"},
		{"over expense ceiling", func(d *Draft) { d.Amount = Money{Cents: MaxExpenseCents + 1} }, "amount"},
		{"missing category", func(d *Draft) { d.CategoryID = "  " }, "category_id"},
		{"empty note", func(d *Draft) { d.Note = "" }, "note"},
		{"one-char note", func(d *Draft) { d.Note = " x " }, "note"},
		{"zero date", func(d *Draft) { d.OccurredAt = time.Time{} }, "occurred_at"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			tc.mutate(&d)
			err := d.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			fe, ok := err.(FieldErrors)
			if !ok {
				t.Fatalf("expected FieldErrors, got %T", err)
			}
			if _, ok := fe[tc.field]; !ok {
				t.Fatalf("expected error on field %q, got %v", tc.field, fe)
			}
		})
	}
}

func TestDraftValidateIncomeCeiling(t *testing.T) {
	d := validDraft()
	d.Kind = Income
	d.CategoryID = "salary"
	// Over the expense ceiling but within the income one.
	d.Amount = Money{Cents: MaxExpenseCents + 1}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	d.Amount = Money{Cents: MaxIncomeCents + 1}
	if err := d.Validate(); err == nil {
		t.Fatalf("expected error over income ceiling")
	}
}

func TestDraftTransactionTrims(t *testing.T) {
	d := validDraft()
	d.Note = "  coffee  "
	d.CategoryID = " food "
	tx := d.Transaction()
	if tx.Note != "coffee" || tx.CategoryID != "food" {
		t.Fatalf("expected trimmed fields, got %q %q", tx.Note, tx.CategoryID)
	}
	if tx.ID != "" {
		t.Fatalf("draft must not assign an id")
	}
}

func TestChangeValidate(t *testing.T) {
	good := Change{Amount: Money{Cents: 1234}, CategoryID: "food", Note: "ok"}
	if err := good.Validate(Expense); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Change{
		{Amount: Money{}, CategoryID: "food", Note: "ok"},
		{Amount: Money{Cents: 100}, CategoryID: "", Note: "ok"},
		{Amount: Money{Cents: 100}, CategoryID: "food", Note: "x"},
	}
	for i, c := range bads {
		if err := c.Validate(Expense); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestFieldErrorsMessage(t *testing.T) {
	err := FieldErrors{"note": "description too short", "amount": "amount must be greater than 0"}
	msg := err.Error()
	// Deterministic field order.
	if !strings.HasPrefix(msg, "invalid amount:") || !strings.Contains(msg, "note:") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{OwnerID: "u1", Kind: Income, Name: "Side gigs"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Category{
		{OwnerID: "", Kind: Expense, Name: "a"},
		{OwnerID: "u1", Kind: "other", Name: "a"},
		{OwnerID: "u1", Kind: Expense, Name: "   "},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
