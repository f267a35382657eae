// Package export flattens aggregated views into tabular rows for external
// report generators: CSV download, Google Sheets append, chart rendering.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"tally/internal/category"
	"tally/internal/core"
)

// Row is one exported transaction line.
type Row struct {
	Date        time.Time
	Kind        core.Kind
	Category    string
	Description string
	Amount      core.Money
}

// Header names the CSV columns in row order.
var Header = []string{"date", "kind", "category", "description", "amount"}

// BuildRows converts transactions into rows, resolving each category id to
// its display name. custom is the owner's category list for the matching
// kind; unresolvable ids export under the fallback name rather than blank.
func BuildRows(txs []core.Transaction, customExpense, customIncome []core.Category) []Row {
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		custom := customExpense
		if tx.Kind == core.Income {
			custom = customIncome
		}
		view := category.Resolve(tx.CategoryID, tx.Kind, custom)
		rows = append(rows, Row{
			Date:        tx.OccurredAt,
			Kind:        tx.Kind,
			Category:    view.Name,
			Description: tx.Note,
			Amount:      tx.Amount,
		})
	}
	return rows
}

// WriteCSV writes the header plus one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Date.Format("2006-01-02"),
			string(r.Kind),
			r.Category,
			r.Description,
			r.Amount.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
