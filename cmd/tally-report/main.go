// tally-report is the offline reporting CLI: category summaries, CSV dumps,
// chart rendering and Google Sheets append against the configured backend.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"tally/internal/backend"
	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/export"
	"tally/internal/report"
	"tally/internal/store"
	"tally/internal/stream"
)

// globals holds the window and kind selection shared by every command.
type globals struct {
	Kind   string `default:"expense" enum:"expense,income" help:"Transaction kind to report on."`
	Window string `default:"month" enum:"month,today,all" help:"Reporting window."`
	Offset int    `default:"0" help:"Month offset for --window=month; 0 is the current month, -1 the previous one."`
}

var cli struct {
	Globals globals `embed:""`

	Summary summaryCmd `cmd:"" help:"Print per-category totals for the window."`
	CSV     csvCmd     `cmd:"" help:"Write transactions of both kinds as CSV."`
	Charts  chartsCmd  `cmd:"" help:"Render pie and daily charts as PNG files."`
	Sheets  sheetsCmd  `cmd:"" help:"Append the window's transactions to the configured Google Sheet."`
}

type summaryCmd struct{}

type csvCmd struct {
	Out string `default:"-" help:"Output file, or - for stdout."`
}

type chartsCmd struct {
	Dir string `default:"." help:"Directory to write pie.png and daily.png into."`
}

type sheetsCmd struct{}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	ctx := kong.Parse(&cli)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// session bundles the opened store with the resolved selection.
type session struct {
	cfg     *config.Config
	store   store.Store
	cleanup backend.CleanupFunc
	kind    core.Kind
	window  core.Window
}

func openSession(g *globals) (*session, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result, err := backend.NewFactory(slog.Default()).CreateStore(cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var window core.Window
	switch g.Window {
	case "today":
		window = core.TodayRange(now)
	case "all":
		window = core.AllTimeRange(now)
	default:
		window = core.MonthRange(now, g.Offset)
	}

	return &session{
		cfg:     cfg,
		store:   result.Store,
		cleanup: result.Cleanup,
		kind:    core.Kind(g.Kind),
		window:  window,
	}, nil
}

func (s *session) close() {
	if err := s.cleanup(); err != nil {
		slog.Error("Store cleanup error", "error", err)
	}
}

func (s *session) fetch(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	return stream.FetchOnce(ctx, s.store, store.TransactionFilter{
		OwnerID: s.cfg.OwnerID,
		Kind:    kind,
		Window:  s.window,
	})
}

func (c *summaryCmd) Run(g *globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := context.Background()
	txs, err := s.fetch(ctx, s.kind)
	if err != nil {
		return err
	}
	custom, err := s.store.ListCategories(ctx, s.cfg.OwnerID, s.kind)
	if err != nil {
		return err
	}

	fmt.Printf("%s from %s to %s\n\n", s.kind,
		s.window.Start.Format("2006-01-02"), s.window.End.Format("2006-01-02"))

	for _, entry := range report.BreakdownByCategory(txs, s.kind, custom) {
		fmt.Printf("%-20s %10s %6.1f%%\n", entry.Category.Name, entry.Amount.String(), entry.Percent)
	}
	fmt.Printf("\n%-20s %10s (%d transactions)\n", "total", report.TotalAmount(txs).String(), len(txs))
	return nil
}

func (s *session) rows(ctx context.Context) ([]export.Row, error) {
	var all []core.Transaction
	for _, kind := range []core.Kind{core.Expense, core.Income} {
		txs, err := s.fetch(ctx, kind)
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}
	core.SortNewestFirst(all)

	customExpense, err := s.store.ListCategories(ctx, s.cfg.OwnerID, core.Expense)
	if err != nil {
		return nil, err
	}
	customIncome, err := s.store.ListCategories(ctx, s.cfg.OwnerID, core.Income)
	if err != nil {
		return nil, err
	}
	return export.BuildRows(all, customExpense, customIncome), nil
}

func (c *csvCmd) Run(g *globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	rows, err := s.rows(context.Background())
	if err != nil {
		return err
	}

	out := os.Stdout
	if c.Out != "-" {
		f, err := os.Create(c.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return export.WriteCSV(out, rows)
}

func (c *chartsCmd) Run(g *globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := context.Background()
	txs, err := s.fetch(ctx, s.kind)
	if err != nil {
		return err
	}
	custom, err := s.store.ListCategories(ctx, s.cfg.OwnerID, s.kind)
	if err != nil {
		return err
	}

	pie, err := export.CategoryPie(report.BreakdownByCategory(txs, s.kind, custom))
	if err != nil {
		return err
	}
	daily, err := export.DailyBars(report.DailySeries(txs, s.window))
	if err != nil {
		return err
	}

	for name, png := range map[string][]byte{"pie.png": pie, "daily.png": daily} {
		if len(png) == 0 {
			fmt.Fprintf(os.Stderr, "skipping %s: nothing to draw\n", name)
			continue
		}
		path := filepath.Join(c.Dir, name)
		if err := os.WriteFile(path, png, 0644); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	return nil
}

func (c *sheetsCmd) Run(g *globals) error {
	s, err := openSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	if !s.cfg.SheetsExportEnabled() {
		return fmt.Errorf("sheets export is not configured; set the GOOGLE_* environment variables")
	}

	ctx := context.Background()
	exporter, err := export.NewSheetsExporter(ctx, s.cfg)
	if err != nil {
		return err
	}

	rows, err := s.rows(ctx)
	if err != nil {
		return err
	}
	if err := exporter.Append(ctx, rows); err != nil {
		return err
	}
	fmt.Printf("appended %d rows\n", len(rows))
	return nil
}
