package language

import (
	"sort"
	"strings"
)

// Auto is the source code that asks the provider to detect the language.
const Auto = "auto"

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var catalog = map[string]string{
	Auto: "Auto Detect",
	"ar": "Arabic",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"hi": "Hindi",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"sv": "Swedish",
	"th": "Thai",
	"tr": "Turkish",
	"ur": "Urdu",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// Name returns the display name for a code, or the code itself when unknown.
func Name(code string) string {
	normalized := NormalizeCode(code)
	if name, ok := catalog[normalized]; ok {
		return name
	}
	return strings.TrimSpace(code)
}

func Known(code string) bool {
	_, ok := catalog[NormalizeCode(code)]
	return ok
}

// All returns the catalog sorted by display name.
func All() []Language {
	out := make([]Language, 0, len(catalog))
	for code, name := range catalog {
		out = append(out, Language{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Targets returns the catalog without the auto-detect entry.
func Targets() []Language {
	all := All()
	out := make([]Language, 0, len(all))
	for _, lang := range all {
		if lang.Code == Auto {
			continue
		}
		out = append(out, lang)
	}
	return out
}

// NameIndex maps display names to codes.
func NameIndex() map[string]string {
	out := make(map[string]string, len(catalog))
	for code, name := range catalog {
		out[name] = code
	}
	return out
}

// Locale maps an app language code to the recognizer locale.
func Locale(code string) string {
	switch NormalizeCode(code) {
	case "ur":
		return "ur-PK"
	case "en":
		return "en-US"
	case "es":
		return "es-ES"
	case "fr":
		return "fr-FR"
	case "de":
		return "de-DE"
	case "hi":
		return "hi-IN"
	case "ja":
		return "ja-JP"
	case "zh":
		return "zh-CN"
	case "ar":
		return "ar-SA"
	default:
		return "en-US"
	}
}
