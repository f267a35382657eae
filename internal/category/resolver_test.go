package category

import (
	"testing"

	"tally/internal/core"
)

func TestResolveCustomWins(t *testing.T) {
	custom := []core.Category{
		{ID: "c1", OwnerID: "u1", Kind: core.Expense, Name: "Coffee", Icon: "☕", Color: "brown"},
	}
	v := Resolve("c1", core.Expense, custom)
	if v.Name != "Coffee" || v.Builtin {
		t.Fatalf("got %+v", v)
	}
}

func TestResolveBuiltin(t *testing.T) {
	v := Resolve("food", core.Expense, nil)
	if v.Name != "Food" || !v.Builtin {
		t.Fatalf("got %+v", v)
	}
	v = Resolve("salary", core.Income, nil)
	if v.Name != "Salary" || !v.Builtin {
		t.Fatalf("got %+v", v)
	}
}

func TestResolveFallbackNeverFails(t *testing.T) {
	// Unknown id with no custom categories at all.
	v := Resolve("deleted-cat", core.Expense, []core.Category{})
	if v.Name == "" {
		t.Fatalf("fallback must have a non-empty name")
	}
	if v.Name != FallbackName || v.Icon != FallbackIcon || v.Color != FallbackColor {
		t.Fatalf("got %+v", v)
	}
	if v.ID != "deleted-cat" {
		t.Fatalf("fallback must keep the original id, got %q", v.ID)
	}

	// A deleted custom category's id behaves identically.
	remaining := []core.Category{{ID: "c2", Kind: core.Expense, Name: "Books"}}
	v = Resolve("c1-gone", core.Expense, remaining)
	if v.Name != FallbackName {
		t.Fatalf("got %+v", v)
	}
}

func TestResolveFillsMissingIconAndColor(t *testing.T) {
	custom := []core.Category{{ID: "c1", Kind: core.Income, Name: "Tips"}}
	v := Resolve("c1", core.Income, custom)
	if v.Icon != FallbackIcon || v.Color != FallbackColor {
		t.Fatalf("got %+v", v)
	}
}

func TestEffectiveList(t *testing.T) {
	t.Run("defaults when no custom", func(t *testing.T) {
		views := EffectiveList(core.Expense, nil)
		if len(views) != 7 || views[0].ID != "food" || !views[0].Builtin {
			t.Fatalf("got %+v", views)
		}
	})

	t.Run("custom replaces defaults", func(t *testing.T) {
		custom := []core.Category{
			{ID: "c1", Kind: core.Expense, Name: "Rent"},
			{ID: "c2", Kind: core.Income, Name: "Gigs"},
			{ID: "c3", Kind: core.Expense, Name: "Fuel"},
		}
		views := EffectiveList(core.Expense, custom)
		if len(views) != 2 || views[0].ID != "c1" || views[1].ID != "c3" {
			t.Fatalf("got %+v", views)
		}
	})

	t.Run("kind filter falls back per kind", func(t *testing.T) {
		custom := []core.Category{{ID: "c1", Kind: core.Expense, Name: "Rent"}}
		views := EffectiveList(core.Income, custom)
		if len(views) != 7 || !views[0].Builtin {
			t.Fatalf("expected income defaults, got %+v", views)
		}
	})
}

func TestIsBuiltinID(t *testing.T) {
	for _, id := range []string{"food", "other", "salary", "other_income"} {
		if !IsBuiltinID(id) {
			t.Fatalf("%q should be builtin", id)
		}
	}
	if IsBuiltinID("c1") || IsBuiltinID("") {
		t.Fatalf("custom ids must not be builtin")
	}
}
