// Package dashboard keeps a live month summary for one owner: two streams,
// one per kind, feeding a recomputed Summary on every snapshot.
package dashboard

import (
	"context"
	"sync"
	"time"

	"tally/internal/core"
	"tally/internal/report"
	"tally/internal/store"
	"tally/internal/stream"
)

// Summary is the current-month headline view. Counters for today come from
// the same month stream filtered a second time, so one subscription per kind
// backs both numbers.
type Summary struct {
	Window       core.Window        `json:"window"`
	ExpenseTotal core.Money         `json:"expense_total_cents"`
	IncomeTotal  core.Money         `json:"income_total_cents"`
	NetBalance   core.Money         `json:"net_balance_cents"`
	ExpenseCount int                `json:"expense_count"`
	IncomeCount  int                `json:"income_count"`
	TodayCount   int                `json:"today_count"`
	Recent       []core.Transaction `json:"recent"`
}

// recentLimit caps the recent-transactions list on the summary.
const recentLimit = 5

// Dashboard holds the two live streams and the latest snapshot of each.
// Totals are recomputed from full snapshots only; a half-updated pair just
// means one extra recompute when the second stream catches up.
type Dashboard struct {
	ownerID string
	now     func() time.Time

	expenses *stream.Stream
	incomes  *stream.Stream

	onUpdate func(Summary)

	mu       sync.Mutex
	window   core.Window
	expense  []core.Transaction
	income   []core.Transaction
}

// New builds a dashboard for ownerID. now defaults to time.Now; tests pin it.
func New(src store.TransactionStore, ownerID string, onUpdate func(Summary), onError store.ErrorFunc, now func() time.Time) *Dashboard {
	if now == nil {
		now = time.Now
	}
	d := &Dashboard{ownerID: ownerID, now: now, onUpdate: onUpdate}
	d.expenses = stream.New(src, d.onExpenses, onError)
	d.incomes = stream.New(src, d.onIncomes, onError)
	return d
}

// Open subscribes both kinds over the current month. Safe to call again to
// move to a new month; the old subscriptions are torn down first.
func (d *Dashboard) Open(ctx context.Context) error {
	w := core.MonthRange(d.now(), 0)

	d.mu.Lock()
	d.window = w
	d.expense = nil
	d.income = nil
	d.mu.Unlock()

	if err := d.expenses.Open(ctx, store.TransactionFilter{OwnerID: d.ownerID, Kind: core.Expense, Window: w}); err != nil {
		return err
	}
	if err := d.incomes.Open(ctx, store.TransactionFilter{OwnerID: d.ownerID, Kind: core.Income, Window: w}); err != nil {
		d.expenses.Close()
		return err
	}
	return nil
}

// Close tears down both streams. Idempotent.
func (d *Dashboard) Close() {
	d.expenses.Close()
	d.incomes.Close()
}

// Current returns the summary for the latest pair of snapshots.
func (d *Dashboard) Current() Summary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.summaryLocked()
}

func (d *Dashboard) onExpenses(txs []core.Transaction) {
	d.mu.Lock()
	d.expense = txs
	s := d.summaryLocked()
	d.mu.Unlock()
	d.notify(s)
}

func (d *Dashboard) onIncomes(txs []core.Transaction) {
	d.mu.Lock()
	d.income = txs
	s := d.summaryLocked()
	d.mu.Unlock()
	d.notify(s)
}

func (d *Dashboard) notify(s Summary) {
	if d.onUpdate != nil {
		d.onUpdate(s)
	}
}

func (d *Dashboard) summaryLocked() Summary {
	expenseTotal := report.TotalAmount(d.expense)
	incomeTotal := report.TotalAmount(d.income)
	today := core.TodayRange(d.now())

	recent := make([]core.Transaction, 0, len(d.expense)+len(d.income))
	recent = append(recent, d.expense...)
	recent = append(recent, d.income...)
	core.SortNewestFirst(recent)
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return Summary{
		Window:       d.window,
		ExpenseTotal: expenseTotal,
		IncomeTotal:  incomeTotal,
		NetBalance:   report.NetBalance(incomeTotal, expenseTotal),
		ExpenseCount: len(d.expense),
		IncomeCount:  len(d.income),
		TodayCount:   report.CountInWindow(d.expense, today) + report.CountInWindow(d.income, today),
		Recent:       recent,
	}
}
