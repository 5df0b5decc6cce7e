package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/diewo77/go-estimates/httpx"
	"github.com/diewo77/go-estimates/internal/estimate"
	"github.com/diewo77/go-estimates/internal/store"
)

const dateParam = "2006-01-02"

type EstimateHandler struct {
	Service *estimate.Service
	Drafts  estimate.DraftStore
}

func NewEstimateHandler(svc *estimate.Service, drafts estimate.DraftStore) *EstimateHandler {
	return &EstimateHandler{Service: svc, Drafts: drafts}
}

func parseDateParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateParam, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List filters by ?number= (substring), ?customer= (exact name) and ?from=/?to= (YYYY-MM-DD, inclusive).
func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.EstimateFilter{
		Number:       strings.TrimSpace(q.Get("number")),
		CustomerName: strings.TrimSpace(q.Get("customer")),
	}
	var err error
	if f.From, err = parseDateParam(q.Get("from")); err != nil {
		badRequest(w, r, "invalid_query")
		return
	}
	if f.To, err = parseDateParam(q.Get("to")); err != nil {
		badRequest(w, r, "invalid_query")
		return
	}
	rows, err := h.Service.Estimates.Search(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []store.EstimateRow{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows, "total": len(rows)})
}

func (h *EstimateHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	no, err := h.Service.Estimates.NextNumber(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"estimate_no": no})
}

func (h *EstimateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.Service.Estimates.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EstimateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PDF downloads the rendered document, regenerating it when the file is missing.
func (h *EstimateHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.Service.Estimates.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	path := h.Service.PDFPath(e.EstimateNo)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if path, err = h.Service.Render(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
	} else if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", e.EstimateNo+".pdf"))
	http.ServeFile(w, r, path)
}

// Edit opens an edit-in-place draft for a stored estimate.
func (h *EstimateHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.Service.Edit(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Drafts.Save(r.Context(), d); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewDraft(d))
}
