package report

import (
	"tally/internal/category"
	"tally/internal/core"
)

// BreakdownEntry is one slice of a category breakdown. Amount keeps full
// precision; Percent is against the total of the listed transactions and
// rounds only at display time.
type BreakdownEntry struct {
	Category category.View `json:"category"`
	Amount   core.Money    `json:"amount_cents"`
	Percent  float64       `json:"percent"`
}

// BreakdownByCategory turns per-category sums into percentage slices. An
// empty input yields an empty list; a zero total yields 0 percent per entry,
// never NaN.
func BreakdownByCategory(txs []core.Transaction, kind core.Kind, custom []core.Category) []BreakdownEntry {
	totals := TotalByCategory(txs, kind, custom)
	if len(totals) == 0 {
		return nil
	}

	grand := TotalAmount(txs)
	out := make([]BreakdownEntry, 0, len(totals))
	for _, ct := range totals {
		pct := 0.0
		if grand.Cents != 0 {
			pct = float64(ct.Amount.Cents) / float64(grand.Cents) * 100
		}
		out = append(out, BreakdownEntry{Category: ct.Category, Amount: ct.Amount, Percent: pct})
	}
	return out
}

// DailyPoint is one day of a time series, ascending by day.
type DailyPoint struct {
	Day   core.Window `json:"day"`
	Total core.Money  `json:"total_cents"`
}

// DailySeries sums txs per local calendar day across w, one point per day
// including empty ones, ascending. Chart rendering wants the oldest day
// first, the opposite of snapshot order.
func DailySeries(txs []core.Transaction, w core.Window) []DailyPoint {
	var points []DailyPoint
	for day := core.TodayRange(w.Start); !day.Start.After(w.End); day = core.TodayRange(day.Start.AddDate(0, 0, 1)) {
		var total core.Money
		for _, tx := range txs {
			if day.Contains(tx.OccurredAt) {
				total = total.Add(tx.Amount)
			}
		}
		points = append(points, DailyPoint{Day: day, Total: total})
	}
	return points
}
