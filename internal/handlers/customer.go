package handlers

import (
	"net/http"

	"github.com/diewo77/go-estimates/httpx"
	"github.com/diewo77/go-estimates/internal/models"
	"github.com/diewo77/go-estimates/internal/store"
	"github.com/diewo77/go-estimates/validation"
)

type CustomerHandler struct {
	Store *store.CustomerStore
}

func NewCustomerHandler(s *store.CustomerStore) *CustomerHandler { return &CustomerHandler{Store: s} }

type customerInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

func (in customerInput) model() models.Customer {
	return models.Customer{Name: in.Name, Phone: in.Phone, Address: in.Address}
}

func decodeCustomer(w http.ResponseWriter, r *http.Request) (customerInput, bool) {
	var in customerInput
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

// List returns customers matching ?q= over name, phone and address.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (h *CustomerHandler) Names(w http.ResponseWriter, r *http.Request) {
	names, err := h.Store.Names(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, names)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeCustomer(w, r)
	if !ok {
		return
	}
	c := in.model()
	if err := h.Store.Create(r.Context(), &c); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := decodeCustomer(w, r)
	if !ok {
		return
	}
	c := in.model()
	c.ID = id
	if err := h.Store.Update(r.Context(), &c); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Delete removes the customer. Estimates that reference it keep the dangling id.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
