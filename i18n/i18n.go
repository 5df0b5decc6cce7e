// Package i18n translates message codes for the supported languages.
package i18n

import (
	"golang.org/x/text/language"
)

const Default = "en"

var supported = []language.Tag{language.English, language.Telugu}

var matcher = language.NewMatcher(supported)

var messages = map[string]map[string]string{
	"en": {
		"required":               "Required",
		"must_be_positive":       "Must be greater than zero",
		"must_not_be_negative":   "Must not be negative",
		"invalid_json":           "Malformed request body",
		"validation_failed":      "Please correct the highlighted fields",
		"not_found":              "Not found",
		"duplicate":              "Already exists",
		"estimate_number_exists": "Estimate number already exists",
		"customer_not_selected":  "Please select an existing customer",
		"customer_name_required": "Please enter customer name",
		"customer_not_found":     "Selected customer does not exist",
		"item_not_found":         "Item not found in catalog",
		"line_out_of_range":      "No such line",
		"pdf_generation_failed":  "Could not generate the PDF",
		"internal_error":         "Something went wrong",
		"invalid_id":             "Invalid identifier",
		"invalid_query":          "Invalid query parameter",
		"invalid_template":       "Invalid Excel format. Please use correct template.",
		"file_required":          "Please upload a file",
	},
	"te": {
		"required":               "తప్పనిసరి",
		"not_found":              "కనుగొనబడలేదు",
		"duplicate":              "ఇప్పటికే ఉంది",
		"estimate_number_exists": "ఈ ఎస్టిమేట్ నంబర్ ఇప్పటికే ఉంది",
		"customer_not_selected":  "దయచేసి కస్టమర్‌ను ఎంచుకోండి",
		"customer_name_required": "దయచేసి కస్టమర్ పేరు నమోదు చేయండి",
	},
}

// T returns the message for code in lang, falling back to English and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	if header == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Supported reports whether lang has a message table.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}
