// Package report derives presentation-ready numbers from transaction
// snapshots: totals, per-category sums, date groups and breakdowns. Every
// function is pure; callers re-run them on each snapshot instead of patching
// previous results.
package report

import (
	"tally/internal/category"
	"tally/internal/core"
)

// CategoryTotal is one per-category sum in selection order.
type CategoryTotal struct {
	Category category.View `json:"category"`
	Amount   core.Money    `json:"amount_cents"`
}

// TotalAmount sums the amounts of txs. Order independent.
func TotalAmount(txs []core.Transaction) core.Money {
	var total core.Money
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// TotalByCategory sums txs per category, in the order categories selects for
// the kind. Categories with a zero sum are dropped. Amounts referencing an id
// no category resolves are collected into a trailing fallback bucket so the
// output always sums to TotalAmount(txs).
func TotalByCategory(txs []core.Transaction, kind core.Kind, custom []core.Category) []CategoryTotal {
	views := category.EffectiveList(kind, custom)

	sums := make(map[string]int64, len(views))
	for _, tx := range txs {
		sums[tx.CategoryID] += tx.Amount.Cents
	}

	out := make([]CategoryTotal, 0, len(views))
	for _, v := range views {
		cents, ok := sums[v.ID]
		if !ok || cents == 0 {
			continue
		}
		delete(sums, v.ID)
		out = append(out, CategoryTotal{Category: v, Amount: core.Money{Cents: cents}})
	}

	// Whatever is left points at ids outside the effective list.
	var leftover int64
	for _, cents := range sums {
		leftover += cents
	}
	if leftover != 0 {
		out = append(out, CategoryTotal{
			Category: category.Resolve("", kind, custom),
			Amount:   core.Money{Cents: leftover},
		})
	}
	return out
}

// NetBalance is income minus expense; negative when spending exceeds income.
func NetBalance(income, expense core.Money) core.Money {
	return income.Sub(expense)
}

// CountInWindow counts the transactions whose OccurredAt lies within w.
// Lets one superset stream back both a "today" and a "this month" counter.
func CountInWindow(txs []core.Transaction, w core.Window) int {
	n := 0
	for _, tx := range txs {
		if w.Contains(tx.OccurredAt) {
			n++
		}
	}
	return n
}
