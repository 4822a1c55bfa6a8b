package translation

import "context"

// Provider translates free-form text between languages.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	Name() string
	// SupportedLanguages lists target codes the provider accepts. Empty means any.
	SupportedLanguages() []string
	// AutoDetect reports whether the provider accepts SourceLang "auto".
	AutoDetect() bool
}

// TranslateRequest describes one translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string // ISO 639-1 (for example: "zh", "en") or "auto"
	TargetLang string
}

// TranslateResponse contains translated text and provider metadata.
type TranslateResponse struct {
	Text         string
	SourceLang   string
	TargetLang   string
	ProviderName string
	LatencyMs    int64
}

// Result is what a caller of the resolver gets back. It comes from exactly
// one provider attempt or from the placeholder path.
type Result struct {
	TranslatedText     string `json:"translated_text"`
	DetectedSourceLang string `json:"source_lang"`
	Provider           string `json:"provider"`
	Degraded           bool   `json:"-"`
}

// FallbackProviderName marks results produced by the placeholder path.
const FallbackProviderName = "fallback"
