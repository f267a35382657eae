package services

import (
	"context"
	"errors"
	"testing"

	"tally/internal/core"
	"tally/internal/store"
	"tally/internal/store/memory"
)

func TestCategoryListFallsBackToDefaults(t *testing.T) {
	svc := NewCategoryService(memory.New())
	ctx := context.Background()

	views, err := svc.List(ctx, "u1", core.Expense)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(views) == 0 {
		t.Fatal("expected built-in defaults for an owner with no custom categories")
	}
	for _, v := range views {
		if !v.Builtin {
			t.Errorf("default list contains non-builtin view %+v", v)
		}
	}
}

func TestCategoryListPrefersCustom(t *testing.T) {
	mem := memory.New()
	svc := NewCategoryService(mem)
	ctx := context.Background()

	id, err := svc.Create(ctx, core.Category{OwnerID: "u1", Kind: core.Expense, Name: "Coffee", Icon: "☕"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	views, err := svc.List(ctx, "u1", core.Expense)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(views) != 1 || views[0].ID != id || views[0].Builtin {
		t.Errorf("views = %+v, want single custom Coffee", views)
	}
}

func TestCategoryCreateValidation(t *testing.T) {
	svc := NewCategoryService(memory.New())

	_, err := svc.Create(context.Background(), core.Category{OwnerID: "u1", Kind: core.Expense, Name: "  "})
	var fieldErrs core.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("want FieldErrors, got %v", err)
	}
	if _, ok := fieldErrs["name"]; !ok {
		t.Errorf("missing name error: %v", fieldErrs)
	}
}

func TestCategoryCreateRejectsBuiltinID(t *testing.T) {
	svc := NewCategoryService(memory.New())

	_, err := svc.Create(context.Background(), core.Category{ID: "food", OwnerID: "u1", Kind: core.Expense, Name: "Fake Food"})
	if !errors.Is(err, ErrBuiltinCategory) {
		t.Errorf("want ErrBuiltinCategory, got %v", err)
	}
}

func TestCategoryUpdateDeleteProtectBuiltins(t *testing.T) {
	svc := NewCategoryService(memory.New())
	ctx := context.Background()

	err := svc.Update(ctx, core.Category{ID: "salary", OwnerID: "u1", Kind: core.Income, Name: "Paycheck"})
	if !errors.Is(err, ErrBuiltinCategory) {
		t.Errorf("Update builtin: want ErrBuiltinCategory, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", "grocery"); !errors.Is(err, ErrBuiltinCategory) {
		t.Errorf("Delete builtin: want ErrBuiltinCategory, got %v", err)
	}
}

func TestCategoryUpdateAndDeleteCustom(t *testing.T) {
	mem := memory.New()
	svc := NewCategoryService(mem)
	ctx := context.Background()

	id, err := svc.Create(ctx, core.Category{OwnerID: "u1", Kind: core.Expense, Name: "Coffee"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Update(ctx, core.Category{ID: id, OwnerID: "u1", Kind: core.Expense, Name: "Espresso"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	views, err := svc.List(ctx, "u1", core.Expense)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if views[0].Name != "Espresso" {
		t.Errorf("name = %q, want Espresso", views[0].Name)
	}

	if err := svc.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, "u1", id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: want ErrNotFound, got %v", err)
	}
}
