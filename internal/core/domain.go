package core

import (
	"sort"
	"strings"
	"time"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

type (
	// Kind discriminates the two transaction collections.
	Kind string

	// Transaction is a single financial event owned by one user.
	// OccurredAt drives all windowing, ordering and grouping; it is set from
	// the client clock at submission, not the store commit time.
	Transaction struct {
		ID         string    `json:"id,omitempty"`
		OwnerID    string    `json:"owner_id"`
		Kind       Kind      `json:"kind"`
		Amount     Money     `json:"amount_cents"`
		CategoryID string    `json:"category_id"`
		Note       string    `json:"note"`
		OccurredAt time.Time `json:"occurred_at"`
		CreatedAt  time.Time `json:"created_at,omitempty"`
	}

	// Category is display metadata for grouping transactions. Deleting a
	// category never cascades to transactions referencing it.
	Category struct {
		ID        string    `json:"id,omitempty"`
		OwnerID   string    `json:"owner_id"`
		Kind      Kind      `json:"kind"`
		Name      string    `json:"name"`
		Icon      string    `json:"icon"`
		Color     string    `json:"color"`
		CreatedAt time.Time `json:"created_at,omitempty"`
	}

	// Draft holds user-entered data for a transaction that has not been
	// written yet. It stays valid after a failed write so the caller can
	// retry without retyping.
	Draft struct {
		OwnerID    string
		Kind       Kind
		Amount     Money
		CategoryID string
		Note       string
		OccurredAt time.Time
	}

	// Change is a full-field update of the mutable transaction fields.
	// Kind and OwnerID are immutable after creation.
	Change struct {
		Amount     Money  `json:"amount_cents"`
		CategoryID string `json:"category_id"`
		Note       string `json:"note"`
	}
)

// FieldErrors maps a field name to the message the user should see inline.
// Returned by the Validate methods; never reaches the store.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid " + strings.Join(parts, "; ")
}

func (k Kind) Valid() bool {
	return k == Expense || k == Income
}

// AmountCeiling is the sanity ceiling for a single amount of this kind.
// Policy, not a protocol limit.
func (k Kind) AmountCeiling() Money {
	if k == Income {
		return Money{Cents: MaxIncomeCents}
	}
	return Money{Cents: MaxExpenseCents}
}

func validateAmount(errs FieldErrors, kind Kind, amount Money) {
	switch {
	case amount.Cents <= 0:
		errs["amount"] = "amount must be greater than 0"
	case amount.Cents > kind.AmountCeiling().Cents:
		errs["amount"] = "amount seems too large"
	}
}

func validateNote(errs FieldErrors, note string) {
	switch trimmed := strings.TrimSpace(note); {
	case trimmed == "":
		errs["note"] = "please describe the transaction"
	case len([]rune(trimmed)) < 2:
		errs["note"] = "description too short"
	}
}

// Validate checks the draft against entry policy: positive amount under the
// per-kind ceiling, category chosen, note of at least two trimmed characters.
func (d Draft) Validate() error {
	errs := FieldErrors{}
	if d.OwnerID == "" {
		errs["owner_id"] = "owner is required"
	}
	if !d.Kind.Valid() {
		errs["kind"] = "kind must be expense or income"
	}
	validateAmount(errs, d.Kind, d.Amount)
	if strings.TrimSpace(d.CategoryID) == "" {
		errs["category_id"] = "category is required"
	}
	validateNote(errs, d.Note)
	if d.OccurredAt.IsZero() {
		errs["occurred_at"] = "date is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Transaction converts a validated draft into the record handed to the store.
// The store assigns the id.
func (d Draft) Transaction() Transaction {
	return Transaction{
		OwnerID:    d.OwnerID,
		Kind:       d.Kind,
		Amount:     d.Amount,
		CategoryID: strings.TrimSpace(d.CategoryID),
		Note:       strings.TrimSpace(d.Note),
		OccurredAt: d.OccurredAt,
	}
}

// Validate checks an update against the same entry policy as Draft.Validate.
// The kind of the record being updated decides the ceiling.
func (c Change) Validate(kind Kind) error {
	errs := FieldErrors{}
	validateAmount(errs, kind, c.Amount)
	if strings.TrimSpace(c.CategoryID) == "" {
		errs["category_id"] = "category is required"
	}
	validateNote(errs, c.Note)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c Category) Validate() error {
	errs := FieldErrors{}
	if c.OwnerID == "" {
		errs["owner_id"] = "owner is required"
	}
	if !c.Kind.Valid() {
		errs["kind"] = "kind must be expense or income"
	}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "name is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
