package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/diewo77/go-estimates/httpx"
	"github.com/diewo77/go-estimates/internal/estimate"
	"github.com/diewo77/go-estimates/internal/handlers"
	"github.com/diewo77/go-estimates/internal/metrics"
	"github.com/diewo77/go-estimates/internal/middleware"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from. Metrics and Logger may be nil.
type Deps struct {
	DB      *gorm.DB
	Service *estimate.Service
	Drafts  estimate.DraftStore
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	mux := http.NewServeMux()

	// --- Health endpoints ---
	//revive:disable:unused-parameter
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter
	mux.Handle("GET /metrics", d.Metrics.Handler())

	ch := handlers.NewCustomerHandler(d.Service.Customers)
	mux.HandleFunc("GET /customers", ch.List)
	mux.HandleFunc("POST /customers", ch.Create)
	mux.HandleFunc("GET /customers/names", ch.Names)
	mux.HandleFunc("GET /customers/{id}", ch.Get)
	mux.HandleFunc("PUT /customers/{id}", ch.Update)
	mux.HandleFunc("DELETE /customers/{id}", ch.Delete)

	ih := handlers.NewItemHandler(d.Service.Items)
	mux.HandleFunc("GET /items", ih.List)
	mux.HandleFunc("POST /items", ih.Create)
	mux.HandleFunc("GET /items/names", ih.Names)
	mux.HandleFunc("GET /items/units", ih.Units)
	mux.HandleFunc("POST /items/import", ih.Import)
	mux.HandleFunc("GET /items/export", ih.Export)
	mux.HandleFunc("GET /items/{id}", ih.Get)
	mux.HandleFunc("PUT /items/{id}", ih.Update)
	mux.HandleFunc("DELETE /items/{id}", ih.Delete)

	eh := handlers.NewEstimateHandler(d.Service, d.Drafts)
	mux.HandleFunc("GET /estimates", eh.List)
	mux.HandleFunc("GET /estimates/next-number", eh.NextNumber)
	mux.HandleFunc("GET /estimates/{id}", eh.Get)
	mux.HandleFunc("DELETE /estimates/{id}", eh.Delete)
	mux.HandleFunc("GET /estimates/{id}/pdf", eh.PDF)
	mux.HandleFunc("POST /estimates/{id}/edit", eh.Edit)

	dh := handlers.NewDraftHandler(d.Service, d.Drafts)
	mux.HandleFunc("POST /drafts", dh.Create)
	mux.HandleFunc("GET /drafts/{id}", dh.Get)
	mux.HandleFunc("PATCH /drafts/{id}", dh.Patch)
	mux.HandleFunc("POST /drafts/{id}/lines", dh.AddLine)
	mux.HandleFunc("PATCH /drafts/{id}/lines/{pos}", dh.UpdateLine)
	mux.HandleFunc("DELETE /drafts/{id}/lines/{pos}", dh.RemoveLine)
	mux.HandleFunc("POST /drafts/{id}/lines/{pos}/item", dh.SelectItem)
	mux.HandleFunc("POST /drafts/{id}/commit", dh.Commit)

	rh := handlers.NewReportHandler(d.Service.Estimates)
	mux.HandleFunc("GET /reports/summary", rh.Summary)
	mux.HandleFunc("GET /reports/monthly", rh.Monthly)
	mux.HandleFunc("GET /reports/monthly.xlsx", rh.MonthlyXLSX)

	return middleware.Prefs(withRecover(d.Logger, withLogging(d.Logger, d.Metrics, mux)))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withLogging(log *slog.Logger, m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		m.ObserveRequest(r.Method, rec.status, elapsed)
		log.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", elapsed)
	})
}

func withRecover(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic", "method", r.Method, "path", r.URL.Path, "panic", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
