package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func langOf(t *testing.T, r *http.Request) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var got string
	h := Prefs(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { got = LangFrom(r) }))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return got, w
}

func TestPrefsLanguageSources(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Language", "te-IN")
	if got, _ := langOf(t, r); got != "te" {
		t.Fatalf("header: expected te got %s", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/?lang=te", nil)
	got, w := langOf(t, r)
	if got != "te" {
		t.Fatalf("query: expected te got %s", got)
	}
	if len(w.Result().Cookies()) != 1 {
		t.Fatalf("expected lang cookie")
	}

	r = httptest.NewRequest(http.MethodGet, "/?lang=xx", nil)
	r.AddCookie(&http.Cookie{Name: "lang", Value: "te"})
	if got, _ := langOf(t, r); got != "te" {
		t.Fatalf("cookie: expected te got %s", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	if got, _ := langOf(t, r); got != "en" {
		t.Fatalf("default: expected en got %s", got)
	}
}
