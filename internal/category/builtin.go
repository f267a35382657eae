// Package category resolves category identifiers to display metadata.
// Resolution never fails: unknown or deleted ids fall back to a usable view.
package category

import "tally/internal/core"

// Fallback identity used when an id resolves to nothing, e.g. a custom
// category that was deleted while transactions still reference it.
const (
	FallbackName  = "Other"
	FallbackIcon  = "💰"
	FallbackColor = "gray"
)

// builtinExpense and builtinIncome are the fixed per-kind catalogs available
// to every owner with no custom categories of that kind. Their ids are
// well known and reserved; custom categories may not reuse them.
var builtinExpense = []View{
	{ID: "food", Kind: core.Expense, Name: "Food", Icon: "🍔", Color: "orange", Builtin: true},
	{ID: "grocery", Kind: core.Expense, Name: "Grocery", Icon: "🛒", Color: "green", Builtin: true},
	{ID: "bike", Kind: core.Expense, Name: "Bike", Icon: "🏍️", Color: "blue", Builtin: true},
	{ID: "transport", Kind: core.Expense, Name: "Transport", Icon: "🚌", Color: "purple", Builtin: true},
	{ID: "mobile", Kind: core.Expense, Name: "Mobile Bill", Icon: "📱", Color: "pink", Builtin: true},
	{ID: "stationery", Kind: core.Expense, Name: "Stationery", Icon: "✏️", Color: "yellow", Builtin: true},
	{ID: "other", Kind: core.Expense, Name: "Other", Icon: "💰", Color: "gray", Builtin: true},
}

var builtinIncome = []View{
	{ID: "salary", Kind: core.Income, Name: "Salary", Icon: "💵", Color: "emerald", Builtin: true},
	{ID: "freelance", Kind: core.Income, Name: "Freelance", Icon: "💻", Color: "cyan", Builtin: true},
	{ID: "gift", Kind: core.Income, Name: "Gift", Icon: "🎁", Color: "pink", Builtin: true},
	{ID: "investment", Kind: core.Income, Name: "Investment", Icon: "📈", Color: "indigo", Builtin: true},
	{ID: "refund", Kind: core.Income, Name: "Refund", Icon: "↩️", Color: "amber", Builtin: true},
	{ID: "allowance", Kind: core.Income, Name: "Allowance", Icon: "👨‍👩‍👧", Color: "violet", Builtin: true},
	{ID: "other_income", Kind: core.Income, Name: "Other", Icon: "💎", Color: "teal", Builtin: true},
}

// BuiltinDefaults returns the built-in catalog for kind. The slice is a copy;
// callers may reorder it freely.
func BuiltinDefaults(kind core.Kind) []View {
	var src []View
	if kind == core.Income {
		src = builtinIncome
	} else {
		src = builtinExpense
	}
	out := make([]View, len(src))
	copy(out, src)
	return out
}

// IsBuiltinID reports whether id belongs to either built-in catalog. Built-in
// ids cannot be edited, deleted, or reused by custom categories.
func IsBuiltinID(id string) bool {
	for _, v := range builtinExpense {
		if v.ID == id {
			return true
		}
	}
	for _, v := range builtinIncome {
		if v.ID == id {
			return true
		}
	}
	return false
}
