package memory

import (
	"sort"

	"tally/internal/core"
)

// sortCategories keeps category snapshots in a stable creation order so
// selection lists do not reshuffle between snapshots.
func sortCategories(cats []core.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if !cats[i].CreatedAt.Equal(cats[j].CreatedAt) {
			return cats[i].CreatedAt.Before(cats[j].CreatedAt)
		}
		return cats[i].ID < cats[j].ID
	})
}
