package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-estimates/httpx"
	"github.com/diewo77/go-estimates/internal/sheets"
	"github.com/diewo77/go-estimates/internal/store"
)

type ReportHandler struct {
	Estimates *store.EstimateStore
	Now       func() time.Time
}

func NewReportHandler(s *store.EstimateStore) *ReportHandler {
	return &ReportHandler{Estimates: s, Now: time.Now}
}

// Summary returns the dashboard counters.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Estimates.Summary(r.Context(), h.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

// month reads ?year= and ?month=, defaulting to the current month.
func (h *ReportHandler) month(r *http.Request) (int, time.Month, bool) {
	now := h.Now()
	year, month := now.Year(), now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 9999 {
			return 0, 0, false
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, false
		}
		month = time.Month(n)
	}
	return year, month, true
}

func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.month(r)
	if !ok {
		badRequest(w, r, "invalid_query")
		return
	}
	rep, err := h.Estimates.Monthly(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}

func (h *ReportHandler) MonthlyXLSX(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.month(r)
	if !ok {
		badRequest(w, r, "invalid_query")
		return
	}
	rep, err := h.Estimates.Monthly(r.Context(), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeXLSX(w, r, fmt.Sprintf("report-%04d-%02d.xlsx", year, int(month)), func(out io.Writer) error {
		return sheets.ExportMonthly(out, rep)
	})
}
