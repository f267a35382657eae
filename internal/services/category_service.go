package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tally/internal/category"
	"tally/internal/core"
	"tally/internal/store"
)

// ErrBuiltinCategory reports an attempt to edit or delete one of the fixed
// default categories, or to create a custom category reusing their ids.
var ErrBuiltinCategory = errors.New("built-in categories cannot be modified")

// CategoryService manages an owner's custom categories. Built-in defaults
// never live in the store; they appear only through the resolver.
type CategoryService struct {
	store store.CategoryStore
}

func NewCategoryService(st store.CategoryStore) *CategoryService {
	return &CategoryService{store: st}
}

// List returns the categories an owner effectively sees for a kind: their
// custom ones when any exist, the built-in defaults otherwise.
func (s *CategoryService) List(ctx context.Context, ownerID string, kind core.Kind) ([]category.View, error) {
	custom, err := s.store.ListCategories(ctx, ownerID, kind)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return category.EffectiveList(kind, custom), nil
}

// Create stores a custom category. The id is store-assigned; callers cannot
// smuggle in a built-in id.
func (s *CategoryService) Create(ctx context.Context, c core.Category) (string, error) {
	if errs := validateCategory(c); len(errs) > 0 {
		return "", errs
	}
	if category.IsBuiltinID(c.ID) {
		return "", ErrBuiltinCategory
	}
	c.ID = ""

	id, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

// Update replaces the display fields of a custom category.
func (s *CategoryService) Update(ctx context.Context, c core.Category) error {
	if category.IsBuiltinID(c.ID) {
		return ErrBuiltinCategory
	}
	if errs := validateCategory(c); len(errs) > 0 {
		return errs
	}

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a custom category. Transactions referencing it are left
// untouched; the resolver falls back for them from then on.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id string) error {
	if category.IsBuiltinID(id) {
		return ErrBuiltinCategory
	}

	if err := s.store.DeleteCategory(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func validateCategory(c core.Category) core.FieldErrors {
	errs := core.FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "name is required"
	}
	if c.Kind != core.Expense && c.Kind != core.Income {
		errs["kind"] = "kind must be expense or income"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
