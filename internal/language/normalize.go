package language

import "strings"

// legacyCodes folds withdrawn ISO 639 codes that browsers and recognizers
// still emit onto the codes the catalog uses.
var legacyCodes = map[string]string{
	"iw": "he",
	"in": "id",
	"ji": "yi",
	"jw": "jv",
}

// NormalizeTag lowercases a BCP-47 style tag and joins subtags with "-".
// The primary subtag must be 2-3 letters (or "auto"); later subtags may hold
// digits, as in "es-419". Invalid input yields "".
func NormalizeTag(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if trimmed == Auto {
		return Auto
	}

	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '-' || r == '_'
	})
	if len(parts) == 0 {
		return ""
	}
	if primary := parts[0]; len(primary) < 2 || len(primary) > 3 || !isLetters(primary) {
		return ""
	}
	for _, part := range parts[1:] {
		if len(part) > 8 || !isAlphanumeric(part) {
			return ""
		}
	}
	return strings.Join(parts, "-")
}

// NormalizeCode returns the primary subtag of a tag: "ur" from "ur-PK".
func NormalizeCode(raw string) string {
	tag := NormalizeTag(raw)
	if tag == "" {
		return ""
	}
	code, _, _ := strings.Cut(tag, "-")
	if mapped, ok := legacyCodes[code]; ok {
		return mapped
	}
	return code
}

func isLetters(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isAlphanumeric(value string) bool {
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
