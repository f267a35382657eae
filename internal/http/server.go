// Package http exposes the JSON API: live dashboard summary, history and
// analytics reads, transaction and category writes, CSV and Sheets export.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tally/internal/cache"
	"tally/internal/config"
	"tally/internal/dashboard"
	"tally/internal/export"
	applog "tally/internal/log"
	"tally/internal/middleware/ratelimit"
	"tally/internal/middleware/security"
	"tally/internal/middleware/trace"
	"tally/internal/services"
	"tally/internal/store"
)

// Server wires handlers, middleware and the analytics response cache around
// an embedded http.Server.
type Server struct {
	http.Server

	ownerID      string
	transactions *services.TransactionService
	categories   *services.CategoryService
	store        store.Store
	dash         *dashboard.Dashboard
	sheets       *export.SheetsExporter

	analyticsCache *cache.LRUCache[analyticsResponse]
	cacheManager   *cache.Manager
	limiter        *ratelimit.Limiter
	headers        security.HeadersConfig
	ips            *security.IPExtractor

	now func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. sheets may be nil when export is not configured.
func NewServer(cfg *config.Config, st store.Store, txs *services.TransactionService, cats *services.CategoryService, dash *dashboard.Dashboard, sheets *export.SheetsExporter) *Server {
	mux := http.NewServeMux()

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	s := &Server{
		Server: http.Server{
			Addr: ":" + cfg.Port,
		},
		ownerID:        cfg.OwnerID,
		transactions:   txs,
		categories:     cats,
		store:          st,
		dash:           dash,
		sheets:         sheets,
		analyticsCache: cache.NewLRUCache[analyticsResponse](100, cacheTTL),
		cacheManager:   cache.NewManager(),
		limiter:        ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		headers:        security.DefaultHeadersConfig(),
		ips:            security.NewIPExtractor(),
		now:            time.Now,
	}

	s.cacheManager.Register(s.analyticsCache)
	s.cacheManager.StartCleanup(time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/dashboard", s.secured(s.handleDashboard))
	mux.HandleFunc("/api/history", s.secured(s.handleHistory))
	mux.HandleFunc("/api/analytics", s.secured(s.handleAnalytics))
	mux.HandleFunc("/api/analytics/pie.png", s.secured(s.handlePieChart))
	mux.HandleFunc("/api/analytics/daily.png", s.secured(s.handleDailyChart))

	mux.HandleFunc("/api/transactions", s.secured(s.handleTransactions))
	mux.HandleFunc("/api/transactions/suggestions", s.secured(s.handleSuggestions))
	mux.HandleFunc("/api/transactions/", s.secured(s.handleTransactionByID))

	mux.HandleFunc("/api/categories", s.secured(s.handleCategories))
	mux.HandleFunc("/api/categories/", s.secured(s.handleCategoryByID))

	mux.HandleFunc("/api/export/csv", s.secured(s.handleExportCSV))
	mux.HandleFunc("/api/export/sheets", s.secured(s.handleExportSheets))

	tracer := trace.NewMiddleware(s.ips.ExtractClientIP)
	s.Handler = tracer.Wrap(mux)

	return s
}

// secured applies security headers and rate-limits mutating requests.
func (s *Server) secured(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.headers.ApplyHeaders(w, r)

		if mutating(r.Method) {
			clientIP := s.ips.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldComponent, applog.ComponentRateLimit,
					applog.FieldClientIP, clientIP,
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}

		next(w, r)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// invalidateAnalytics drops every cached analytics payload for the owner.
// Called after each successful write.
func (s *Server) invalidateAnalytics() {
	s.analyticsCache.DeletePrefix(s.ownerID + ":")
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
