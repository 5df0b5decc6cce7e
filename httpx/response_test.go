package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, http.StatusConflict, "duplicate", map[string]string{"name": "taken"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var got ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Error != "duplicate" || got.Message != "" {
		t.Fatalf("unexpected body %+v", got)
	}
}

func TestJSONNilPayload(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, nil)
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Fatalf("expected null body got %q", w.Body.String())
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	if err := DecodeJSON(r, &v); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowed(w, "GET,POST")
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "GET,POST" {
		t.Fatalf("unexpected response %d %q", w.Code, w.Header().Get("Allow"))
	}
}
