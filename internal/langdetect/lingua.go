package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// Undetermined is returned when the text is too short or ambiguous.
const Undetermined = "und"

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

var catalogLanguages = []lingua.Language{
	lingua.Arabic,
	lingua.Chinese,
	lingua.Dutch,
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Hindi,
	lingua.Indonesian,
	lingua.Italian,
	lingua.Japanese,
	lingua.Korean,
	lingua.Polish,
	lingua.Portuguese,
	lingua.Russian,
	lingua.Spanish,
	lingua.Swedish,
	lingua.Thai,
	lingua.Turkish,
	lingua.Urdu,
	lingua.Vietnamese,
}

// DetectISO6391 returns the two-letter code of the text's language, or ""
// when there is too little signal.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < 6 {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// Detect is DetectISO6391 with Undetermined in place of the empty result.
func Detect(text string) string {
	if code := DetectISO6391(text); code != "" {
		return code
	}
	return Undetermined
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(catalogLanguages...).
			WithMinimumRelativeDistance(0.1).
			Build()
	})
	return detector
}
