package i18n

import "testing"

func TestDetectLanguage(t *testing.T) {
	if DetectLanguage("en-US,en;q=0.9") != "en" {
		t.Fatalf("expected en")
	}
	if DetectLanguage("te-IN,te;q=0.9,en;q=0.5") != "te" {
		t.Fatalf("expected te")
	}
	if DetectLanguage("fr-FR,fr;q=0.8") != "en" {
		t.Fatalf("expected en fallback")
	}
	if DetectLanguage("") != "en" {
		t.Fatalf("expected default en")
	}
	if DetectLanguage(";;;garbage") != "en" {
		t.Fatalf("expected default on malformed header")
	}
}

func TestTranslations(t *testing.T) {
	if T("en", "required") != "Required" {
		t.Fatalf("expected Required")
	}
	if T("te", "required") != "తప్పనిసరి" {
		t.Fatalf("expected telugu")
	}
	// unknown code -> fallback to code
	if T("en", "__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	// missing telugu entry -> english
	if T("te", "internal_error") != "Something went wrong" {
		t.Fatalf("expected en fallback for te")
	}
	if T("es", "required") != "Required" {
		t.Fatalf("expected en fallback for unknown lang")
	}
}
