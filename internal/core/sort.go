package core

import "sort"

// SortNewestFirst orders transactions descending by OccurredAt, the display
// order every snapshot is handed out in. Ties break on id so the order is
// total and stable across snapshots.
func SortNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].OccurredAt.Equal(txs[j].OccurredAt) {
			return txs[i].OccurredAt.After(txs[j].OccurredAt)
		}
		return txs[i].ID > txs[j].ID
	})
}
