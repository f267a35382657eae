package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/report"
)

func sampleTxs() []core.Transaction {
	return []core.Transaction{
		{
			ID:         "t1",
			OwnerID:    "u1",
			Kind:       core.Expense,
			Amount:     core.Money{Cents: 1250},
			CategoryID: "food",
			Note:       "lunch",
			OccurredAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local),
		},
		{
			ID:         "t2",
			OwnerID:    "u1",
			Kind:       core.Income,
			Amount:     core.Money{Cents: 250000},
			CategoryID: "salary",
			Note:       "march pay",
			OccurredAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local),
		},
		{
			ID:         "t3",
			OwnerID:    "u1",
			Kind:       core.Expense,
			Amount:     core.Money{Cents: 700},
			CategoryID: "gone-category",
			Note:       "mystery",
			OccurredAt: time.Date(2024, 3, 10, 18, 0, 0, 0, time.Local),
		},
	}
}

func TestBuildRowsResolvesNames(t *testing.T) {
	rows := BuildRows(sampleTxs(), nil, nil)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Category != "Food" {
		t.Errorf("row 0 category = %q, want Food", rows[0].Category)
	}
	if rows[1].Category != "Salary" {
		t.Errorf("row 1 category = %q, want Salary", rows[1].Category)
	}
	// A deleted category exports under the fallback name, never blank.
	if rows[2].Category == "" {
		t.Error("row 2 category must not be blank")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, BuildRows(sampleTxs(), nil, nil)); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows", len(lines))
	}
	if lines[0] != strings.Join(Header, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "2024-03-15") || !strings.Contains(lines[1], "12.50") {
		t.Errorf("row 1 = %q, want date and decimal amount", lines[1])
	}
	if !strings.Contains(lines[2], "income") || !strings.Contains(lines[2], "2500.00") {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != strings.Join(Header, ",") {
		t.Errorf("empty export should still carry the header, got %q", buf.String())
	}
}

func TestCategoryPieSkipsEmpty(t *testing.T) {
	png, err := CategoryPie(nil)
	if err != nil {
		t.Fatalf("CategoryPie() error = %v", err)
	}
	if png != nil {
		t.Error("no entries should render no chart")
	}
}

func TestDailyBarsSkipsEmptySeries(t *testing.T) {
	w := core.TodayRange(time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local))
	points := []report.DailyPoint{{Day: w}, {Day: w}}
	png, err := DailyBars(points)
	if err != nil {
		t.Fatalf("DailyBars() error = %v", err)
	}
	if png != nil {
		t.Error("all-zero series should render no chart")
	}
}
