package http

import (
	"fmt"
	"net/http"
	"time"

	"tally/internal/core"
	"tally/internal/export"
	"tally/internal/report"
	"tally/internal/store"
	"tally/internal/stream"
)

type analyticsResponse struct {
	Kind      core.Kind               `json:"kind"`
	Window    core.Window             `json:"window"`
	Total     core.Money              `json:"total_cents"`
	Count     int                     `json:"count"`
	Totals    []report.CategoryTotal  `json:"totals"`
	Breakdown []report.BreakdownEntry `json:"breakdown"`
	Daily     []report.DailyPoint     `json:"daily"`
}

type historyResponse struct {
	Kind   core.Kind          `json:"kind"`
	Window core.Window        `json:"window"`
	Groups []report.DateGroup `json:"groups"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	respondJSON(w, http.StatusOK, s.dash.Current())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	kind, ok := parseKind(r)
	if !ok {
		badRequest(w, "kind must be expense or income")
		return
	}
	window, ok := parseWindow(r, s.now())
	if !ok {
		badRequest(w, "invalid window selection")
		return
	}

	txs, err := stream.FetchOnce(r.Context(), s.store, store.TransactionFilter{
		OwnerID: s.ownerID,
		Kind:    kind,
		Window:  window,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if categoryID := r.URL.Query().Get("category_id"); categoryID != "" {
		filtered := txs[:0]
		for _, tx := range txs {
			if tx.CategoryID == categoryID {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}

	groups := report.GroupByRelativeDate(txs, s.now())
	if groups == nil {
		groups = []report.DateGroup{}
	}
	respondJSON(w, http.StatusOK, historyResponse{Kind: kind, Window: window, Groups: groups})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	resp, err := s.analyticsFor(r)
	if err != nil {
		if badReq, ok := err.(badParamError); ok {
			badRequest(w, string(badReq))
			return
		}
		writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	resp, err := s.analyticsFor(r)
	if err != nil {
		if badReq, ok := err.(badParamError); ok {
			badRequest(w, string(badReq))
			return
		}
		writeError(w, r, err)
		return
	}

	png, err := export.CategoryPie(resp.Breakdown)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, png)
}

func (s *Server) handleDailyChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	resp, err := s.analyticsFor(r)
	if err != nil {
		if badReq, ok := err.(badParamError); ok {
			badRequest(w, string(badReq))
			return
		}
		writeError(w, r, err)
		return
	}

	png, err := export.DailyBars(resp.Daily)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePNG(w, png)
}

func writePNG(w http.ResponseWriter, png []byte) {
	if len(png) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// badParamError distinguishes client parameter mistakes from store failures
// inside analyticsFor.
type badParamError string

func (e badParamError) Error() string { return string(e) }

// analyticsFor computes or serves from cache the analytics payload selected
// by the request's kind and window parameters.
func (s *Server) analyticsFor(r *http.Request) (analyticsResponse, error) {
	kind, ok := parseKind(r)
	if !ok {
		return analyticsResponse{}, badParamError("kind must be expense or income")
	}
	window, ok := parseWindow(r, s.now())
	if !ok {
		return analyticsResponse{}, badParamError("invalid window selection")
	}

	// The all-time window ends at the request clock; key on the day of the
	// end bound so consecutive requests share one entry.
	key := fmt.Sprintf("%s:%s:%d:%d", s.ownerID, kind,
		window.Start.UnixMilli(), window.End.Truncate(24*time.Hour).UnixMilli())
	if cached, found := s.analyticsCache.Get(key); found {
		return cached, nil
	}

	txs, err := stream.FetchOnce(r.Context(), s.store, store.TransactionFilter{
		OwnerID: s.ownerID,
		Kind:    kind,
		Window:  window,
	})
	if err != nil {
		return analyticsResponse{}, err
	}
	custom, err := s.store.ListCategories(r.Context(), s.ownerID, kind)
	if err != nil {
		return analyticsResponse{}, err
	}

	resp := analyticsResponse{
		Kind:      kind,
		Window:    window,
		Total:     report.TotalAmount(txs),
		Count:     len(txs),
		Totals:    report.TotalByCategory(txs, kind, custom),
		Breakdown: report.BreakdownByCategory(txs, kind, custom),
		Daily:     report.DailySeries(txs, window),
	}
	if resp.Totals == nil {
		resp.Totals = []report.CategoryTotal{}
	}
	if resp.Breakdown == nil {
		resp.Breakdown = []report.BreakdownEntry{}
	}

	s.analyticsCache.Set(key, resp)
	return resp, nil
}
