package report

import (
	"time"

	"tally/internal/core"
)

// DateGroup is one display bucket of transactions sharing a calendar day.
type DateGroup struct {
	Label        string             `json:"label"`
	Transactions []core.Transaction `json:"transactions"`
}

// RelativeDateLabel names a calendar day relative to now: "Today",
// "Yesterday", otherwise the formatted date with the year only when it
// differs from now's year.
func RelativeDateLabel(t, now time.Time) string {
	if sameDay(t, now) {
		return "Today"
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	if t.Year() == now.Year() {
		return t.Format("2 January")
	}
	return t.Format("2 January 2006")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// GroupByRelativeDate buckets txs by calendar day. Group order follows the
// first occurrence of each day in txs, so a newest-first input yields
// newest-first groups. Within each group the transactions are re-sorted
// newest first regardless of input order.
func GroupByRelativeDate(txs []core.Transaction, now time.Time) []DateGroup {
	var groups []DateGroup
	index := make(map[string]int)

	for _, tx := range txs {
		label := RelativeDateLabel(tx.OccurredAt, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DateGroup{Label: label})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}

	for i := range groups {
		core.SortNewestFirst(groups[i].Transactions)
	}
	return groups
}

// Flatten concatenates the groups back into one list, preserving group and
// in-group order.
func Flatten(groups []DateGroup) []core.Transaction {
	var out []core.Transaction
	for _, g := range groups {
		out = append(out, g.Transactions...)
	}
	return out
}
