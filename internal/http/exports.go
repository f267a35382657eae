package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"tally/internal/core"
	"tally/internal/export"
	"tally/internal/store"
	"tally/internal/stream"
)

// exportRows collects both kinds over the window and flattens them into
// export rows, newest first.
func (s *Server) exportRows(r *http.Request) ([]export.Row, error) {
	window, ok := parseWindow(r, s.now())
	if !ok {
		return nil, badParamError("invalid window selection")
	}

	g, ctx := errgroup.WithContext(r.Context())
	var byKind [2][]core.Transaction
	for i, kind := range []core.Kind{core.Expense, core.Income} {
		g.Go(func() error {
			txs, err := stream.FetchOnce(ctx, s.store, store.TransactionFilter{
				OwnerID: s.ownerID,
				Kind:    kind,
				Window:  window,
			})
			byKind[i] = txs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := append(byKind[0], byKind[1]...)
	core.SortNewestFirst(all)

	customExpense, err := s.store.ListCategories(r.Context(), s.ownerID, core.Expense)
	if err != nil {
		return nil, err
	}
	customIncome, err := s.store.ListCategories(r.Context(), s.ownerID, core.Income)
	if err != nil {
		return nil, err
	}

	return export.BuildRows(all, customExpense, customIncome), nil
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rows, err := s.exportRows(r)
	if err != nil {
		if badReq, ok := err.(badParamError); ok {
			badRequest(w, string(badReq))
			return
		}
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tally-export.csv"`)
	if err := export.WriteCSV(w, rows); err != nil {
		writeError(w, r, err)
	}
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if s.sheets == nil {
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "sheets export not configured"})
		return
	}

	rows, err := s.exportRows(r)
	if err != nil {
		if badReq, ok := err.(badParamError); ok {
			badRequest(w, string(badReq))
			return
		}
		writeError(w, r, err)
		return
	}

	if err := s.sheets.Append(r.Context(), rows); err != nil {
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"exported": len(rows)})
}
