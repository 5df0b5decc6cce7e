package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/diewo77/go-estimates/httpx"
	"github.com/diewo77/go-estimates/internal/models"
	"github.com/diewo77/go-estimates/internal/sheets"
	"github.com/diewo77/go-estimates/internal/store"
	"github.com/diewo77/go-estimates/validation"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadBytes  = 10 << 20
)

// writeXLSX builds the workbook in memory and sends it as a download.
// Headers are only set once the workbook is complete, so a failure is
// answered with a plain JSON error.
func writeXLSX(w http.ResponseWriter, r *http.Request, filename string, build func(io.Writer) error) {
	var buf bytes.Buffer
	if err := build(&buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}

type ItemHandler struct {
	Store *store.ItemStore
}

func NewItemHandler(s *store.ItemStore) *ItemHandler { return &ItemHandler{Store: s} }

type itemInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=500"`
	Unit        string  `json:"unit" validate:"max=50"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	HamaliRate  float64 `json:"hamali_rate" validate:"gte=0"`
}

func (in itemInput) model() models.Item {
	return models.Item{Name: in.Name, Description: in.Description, Unit: in.Unit, Rate: in.Rate, HamaliRate: in.HamaliRate}
}

func decodeItem(w http.ResponseWriter, r *http.Request) (itemInput, bool) {
	var in itemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badRequest(w, r, "invalid_json")
		return in, false
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Struct(in, v)
	if !v.Empty() {
		writeViolations(w, r, v)
		return in, false
	}
	return in, true
}

// List returns catalog items matching ?q= over name and description.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (h *ItemHandler) Names(w http.ResponseWriter, r *http.Request) {
	names, err := h.Store.Names(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, names)
}

//revive:disable-next-line:unused-parameter
func (h *ItemHandler) Units(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, models.Units)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	it, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeItem(w, r)
	if !ok {
		return
	}
	it := in.model()
	if err := h.Store.Create(r.Context(), &it); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, it)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := decodeItem(w, r)
	if !ok {
		return
	}
	it := in.model()
	it.ID = id
	if err := h.Store.Update(r.Context(), &it); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, it)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import reads the multipart "file" field as an xlsx catalog and upserts its rows.
func (h *ItemHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	f, _, err := r.FormFile("file")
	if err != nil {
		badRequest(w, r, "file_required")
		return
	}
	defer f.Close()
	res, err := sheets.ImportItems(r.Context(), f, h.Store)
	if errors.Is(err, sheets.ErrInvalidTemplate) {
		badRequest(w, r, "invalid_template")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Export downloads the catalog in the import template.
func (h *ItemHandler) Export(w http.ResponseWriter, r *http.Request) {
	writeXLSX(w, r, "items.xlsx", func(out io.Writer) error {
		return sheets.ExportItems(r.Context(), out, h.Store)
	})
}
