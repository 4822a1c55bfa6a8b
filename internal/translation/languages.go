package translation

import (
	"slices"
	"strings"
	"unicode/utf8"

	"horse.fit/babel/internal/language"
)

// MaxTextLength is the longest input accepted for one translation request.
const MaxTextLength = 5000

// Placeholder builds the degraded result text for targetLang.
func Placeholder(text, targetLang string) string {
	return "[Translated to " + language.Name(targetLang) + "] " + text
}

func supportsTarget(provider Provider, targetLang string) bool {
	supported := provider.SupportedLanguages()
	if len(supported) == 0 {
		return true
	}
	return slices.Contains(supported, normalizeLangCode(targetLang))
}

// splitChunks cuts text into pieces of at most size runes.
func splitChunks(text string, size int) []string {
	if size < 1 || utf8.RuneCountInString(text) <= size {
		return []string{text}
	}

	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func catalogTargetCodes() []string {
	targets := language.Targets()
	codes := make([]string, 0, len(targets))
	for _, lang := range targets {
		codes = append(codes, strings.ToLower(lang.Code))
	}
	return codes
}
