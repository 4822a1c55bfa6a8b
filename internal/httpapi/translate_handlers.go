package httpapi

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"horse.fit/babel/internal/apperr"
	"horse.fit/babel/internal/globaltime"
	"horse.fit/babel/internal/language"
	"horse.fit/babel/internal/payloadschema"
	"horse.fit/babel/internal/translation"
)

type textTranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type textTranslateResponse struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	Provider       string `json:"provider"`
	Timestamp      string `json:"timestamp"`
}

// handleTranslateDispatch serves /translate when every service shares one
// process: uploads go to the audio pipeline, JSON to the text pipeline.
func (s *Server) handleTranslateDispatch(c echo.Context) error {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(strings.ToLower(contentType), echo.MIMEMultipartForm) {
		return s.handleAudioTranslate(c)
	}
	return s.handleTextTranslate(c)
}

func (s *Server) handleTextTranslate(c echo.Context) error {
	var req textTranslateRequest
	if err := s.decodeBody(c, payloadschema.TextTranslate, &req); err != nil {
		return s.respondError(c, err)
	}

	text, err := validateTranslationText(req.Text)
	if err != nil {
		return s.respondError(c, err)
	}
	source := langOrDefault(req.SourceLang, language.Auto)
	target := langOrDefault(req.TargetLang, s.opts.DefaultLang)

	result := s.translate(c, text, source, target)
	return c.JSON(http.StatusOK, textTranslateResponse{
		OriginalText:   text,
		TranslatedText: result.TranslatedText,
		SourceLang:     result.DetectedSourceLang,
		TargetLang:     target,
		Provider:       result.Provider,
		Timestamp:      globaltime.Local().Format("2006-01-02T15:04:05.000000"),
	})
}

// handleLanguages returns the catalog sorted by display name.
func (s *Server) handleLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, language.All())
}

// handleLanguageIndex returns the catalog keyed by display name.
func (s *Server) handleLanguageIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"languages": language.NameIndex(),
	})
}

func (s *Server) translate(c echo.Context, text, source, target string) translation.Result {
	if s.deps.Translator == nil {
		return translation.Result{
			TranslatedText:     translation.Placeholder(text, target),
			DetectedSourceLang: placeholderSource(source, s.opts.DefaultLang),
			Provider:           translation.FallbackProviderName,
			Degraded:           true,
		}
	}
	return s.deps.Translator.Resolve(c.Request().Context(), text, source, target)
}

func validateTranslationText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", apperr.Validation("No text provided")
	}
	if utf8.RuneCountInString(text) > translation.MaxTextLength {
		return "", apperr.Validation("Text too long. Maximum 5000 characters allowed.")
	}
	return text, nil
}

func langOrDefault(raw, fallback string) string {
	code := strings.TrimSpace(raw)
	if code == "" {
		return fallback
	}
	return code
}

func placeholderSource(source, defaultLang string) string {
	if strings.EqualFold(source, language.Auto) || source == "" {
		return defaultLang
	}
	return source
}
