package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/go-estimates/httpx"
	"github.com/diewo77/go-estimates/internal/estimate"
	"github.com/diewo77/go-estimates/internal/models"
	"github.com/diewo77/go-estimates/internal/pricing"
	"github.com/diewo77/go-estimates/validation"
)

// DraftHandler exposes the estimate composition workflow. Every mutation
// loads the draft, applies one operation and saves it back.
type DraftHandler struct {
	Service *estimate.Service
	Drafts  estimate.DraftStore
}

func NewDraftHandler(svc *estimate.Service, drafts estimate.DraftStore) *DraftHandler {
	return &DraftHandler{Service: svc, Drafts: drafts}
}

type draftView struct {
	*estimate.Draft
	Totals pricing.Charges `json:"totals"`
}

func viewDraft(d *estimate.Draft) draftView {
	return draftView{Draft: d, Totals: d.Totals()}
}

type commitView struct {
	Estimate *models.Estimate `json:"estimate"`
	PDFPath  string           `json:"pdf_path"`
	Next     draftView        `json:"next"`
}

func (h *DraftHandler) load(w http.ResponseWriter, r *http.Request) (*estimate.Draft, bool) {
	d, err := h.Drafts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return d, true
}

func (h *DraftHandler) save(w http.ResponseWriter, r *http.Request, d *estimate.Draft) {
	if err := h.Drafts.Save(r.Context(), d); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewDraft(d))
}

func linePos(w http.ResponseWriter, r *http.Request) (int, bool) {
	pos, err := strconv.Atoi(r.PathValue("pos"))
	if err != nil {
		writeViolations(w, r, validation.Violations{"lines": estimate.CodeLineOutOfRange})
		return 0, false
	}
	return pos, true
}

func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.NewDraft(r.Context())
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

func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, viewDraft(d))
}

// Patch changes header fields: date, customer selection and charges.
func (h *DraftHandler) Patch(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	var p estimate.HeaderPatch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	if p.Mode != nil && *p.Mode != estimate.CustomerExisting && *p.Mode != estimate.CustomerNew {
		writeViolations(w, r, validation.Violations{"customer_mode": "not_allowed"})
		return
	}
	d.UpdateHeader(p)
	if err := d.CheckCharges(); err != nil {
		writeError(w, r, err)
		return
	}
	h.save(w, r, d)
}

func (h *DraftHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	d.AddLine()
	h.save(w, r, d)
}

func (h *DraftHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	pos, ok := linePos(w, r)
	if !ok {
		return
	}
	var p estimate.LinePatch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	if err := d.UpdateLine(pos, p); err != nil {
		writeError(w, r, err)
		return
	}
	h.save(w, r, d)
}

func (h *DraftHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	pos, ok := linePos(w, r)
	if !ok {
		return
	}
	if err := d.RemoveLine(pos); err != nil {
		writeError(w, r, err)
		return
	}
	h.save(w, r, d)
}

// SelectItem copies a catalog item, looked up by name, into a line.
func (h *DraftHandler) SelectItem(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	pos, ok := linePos(w, r)
	if !ok {
		return
	}
	var in struct {
		ItemName string `json:"item_name" validate:"required"`
	}
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badRequest(w, r, "invalid_json")
		return
	}
	v := validation.Violations{}
	validation.Struct(in, v)
	if !v.Empty() {
		writeViolations(w, r, v)
		return
	}
	if err := h.Service.SelectItem(r.Context(), d, pos, in.ItemName); err != nil {
		writeError(w, r, err)
		return
	}
	h.save(w, r, d)
}

// Commit saves the draft as an estimate and replaces it with a fresh draft.
// When the header was written but a later step failed the draft is kept,
// switched to edit-in-place.
func (h *DraftHandler) Commit(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	wasEditing := d.Editing()
	res, err := h.Service.Commit(r.Context(), d)
	if err != nil {
		if d.Editing() && !wasEditing {
			if serr := h.Drafts.Save(r.Context(), d); serr != nil {
				slog.ErrorContext(r.Context(), "save draft after failed commit",
					"draft_id", d.ID, "estimate_id", d.EstimateID, "error", serr)
			}
		}
		writeError(w, r, err)
		return
	}
	_ = h.Drafts.Delete(r.Context(), d.ID)
	if err := h.Drafts.Save(r.Context(), res.Next); err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if wasEditing {
		status = http.StatusOK
	}
	httpx.JSON(w, status, commitView{Estimate: res.Estimate, PDFPath: res.PDFPath, Next: viewDraft(res.Next)})
}
