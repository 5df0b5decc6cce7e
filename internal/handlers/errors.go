package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/diewo77/go-estimates/httpx"
	"github.com/diewo77/go-estimates/i18n"
	"github.com/diewo77/go-estimates/internal/estimate"
	"github.com/diewo77/go-estimates/internal/middleware"
	"github.com/diewo77/go-estimates/internal/render"
	"github.com/diewo77/go-estimates/internal/store"
	"github.com/diewo77/go-estimates/validation"
)

// writeError maps a service or store error to a JSON error with a localized message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	lang := middleware.LangFrom(r)
	var ve *estimate.ValidationError
	var re *render.Error
	switch {
	case errors.As(err, &ve):
		writeViolations(w, r, validation.Violations{ve.Field: ve.Code})
	case errors.Is(err, estimate.ErrDuplicateNumber):
		code := "estimate_number_exists"
		httpx.JSONErrorMessage(w, http.StatusConflict, code, i18n.T(lang, code), nil)
	case errors.Is(err, store.ErrDuplicateKey):
		httpx.JSONErrorMessage(w, http.StatusConflict, "duplicate", i18n.T(lang, "duplicate"), nil)
	case errors.Is(err, store.ErrNotFound):
		httpx.JSONErrorMessage(w, http.StatusNotFound, "not_found", i18n.T(lang, "not_found"), nil)
	case errors.As(err, &re):
		slog.ErrorContext(r.Context(), "pdf generation failed", "path", re.Path, "error", re.Err)
		code := "pdf_generation_failed"
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, code, i18n.T(lang, code), nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", i18n.T(lang, "internal_error"), nil)
	}
}

// writeViolations answers 400 validation_failed with the per-field codes.
func writeViolations(w http.ResponseWriter, r *http.Request, v validation.Violations) {
	lang := middleware.LangFrom(r)
	msg := i18n.T(lang, "validation_failed")
	if len(v) == 1 {
		for _, code := range v {
			msg = i18n.T(lang, code)
		}
	}
	httpx.JSONErrorMessage(w, http.StatusBadRequest, "validation_failed", msg, v)
}

func badRequest(w http.ResponseWriter, r *http.Request, code string) {
	httpx.JSONErrorMessage(w, http.StatusBadRequest, code, i18n.T(middleware.LangFrom(r), code), nil)
}

// pathID parses the {id} wildcard. It writes the 400 itself when the value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(w, r, "invalid_id")
		return 0, false
	}
	return uint(id), true
}
