package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/babel/internal/apperr"
	"horse.fit/babel/internal/language"
	"horse.fit/babel/internal/ocr"
	"horse.fit/babel/internal/payloadschema"
	"horse.fit/babel/internal/speech"
)

const (
	placeholderTranscript           = "This is a transcript of your recording."
	placeholderTranscriptNoCodec    = "This is a transcript of your recording. (Audio conversion not available)"
	speechAttachmentName            = "translation.mp3"
	phraseAudioName                 = "audio.mp3"
	defaultPhrasebookLanguage       = "es"
	contentTypeMPEG                 = "audio/mpeg"
	contentTypePDF                  = "application/pdf"
	errMessageNoAudioUpload         = "No file uploaded (field name must be 'file')."
	errMessageNoImageUpload         = "No image uploaded (field name must be 'image')."
	errMessageNoTextExtracted       = "No text could be extracted from the image"
	errMessageSpeechTextRequired    = "Text is required"
	errMessageSpeechGenerationError = "Failed to generate speech"
)

type audioTranslateResponse struct {
	Transcript     string `json:"transcript"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	Provider       string `json:"provider"`
}

type imageTranslateResponse struct {
	ExtractedText  string `json:"extracted_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	Provider       string `json:"provider"`
}

type speechRequest struct {
	Text     string `json:"text"`
	Lang     string `json:"lang"`
	Language string `json:"language"`
}

// handleAudioTranslate always answers with a transcript: codec or
// recognizer failures swap in a fixed placeholder before translating.
func (s *Server) handleAudioTranslate(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return s.respondError(c, apperr.Validation(errMessageNoAudioUpload))
	}
	raw, err := readUpload(header)
	if err != nil {
		return s.respondError(c, apperr.Validation(errMessageNoAudioUpload))
	}

	source := langOrDefault(c.FormValue("source_lang"), language.Auto)
	target := langOrDefault(c.FormValue("target_lang"), s.opts.DefaultLang)
	ctx := c.Request().Context()
	logger := s.logger.With().Str("source_lang", source).Str("target_lang", target).Logger()

	transcript := placeholderTranscriptNoCodec
	if s.deps.Audio != nil && s.deps.Audio.Available() {
		wav, normErr := s.deps.Audio.NormalizeAudio(ctx, raw, filepath.Ext(header.Filename))
		switch {
		case normErr != nil:
			logger.Warn().Err(normErr).Str("filename", header.Filename).Msg("audio normalization failed")
		case s.deps.Transcriber == nil:
			transcript = placeholderTranscript
		default:
			text := s.deps.Transcriber.Transcribe(ctx, wav, language.Locale(source))
			if speech.IsSentinel(text) || strings.TrimSpace(text) == "" {
				logger.Warn().Str("transcript", text).Msg("transcription failed")
				transcript = placeholderTranscript
			} else {
				transcript = text
			}
		}
	}

	result := s.translate(c, transcript, source, target)
	return c.JSON(http.StatusOK, audioTranslateResponse{
		Transcript:     transcript,
		TranslatedText: result.TranslatedText,
		SourceLang:     result.DetectedSourceLang,
		Provider:       result.Provider,
	})
}

func (s *Server) handleImageTranslate(c echo.Context) error {
	header, err := c.FormFile("image")
	if err != nil {
		return s.respondError(c, apperr.Validation(errMessageNoImageUpload))
	}
	raw, err := readUpload(header)
	if err != nil {
		return s.respondError(c, apperr.Validation(errMessageNoImageUpload))
	}

	source := langOrDefault(c.FormValue("source_lang"), language.Auto)
	target := langOrDefault(c.FormValue("target_lang"), s.opts.DefaultLang)

	if s.deps.OCR == nil {
		return s.respondError(c, apperr.Validation(errMessageNoTextExtracted))
	}
	text, err := s.deps.OCR.Extract(c.Request().Context(), raw)
	if err != nil {
		if !errors.Is(err, ocr.ErrNoText) {
			s.logger.Warn().Err(err).Str("filename", header.Filename).Msg("text extraction failed")
		}
		return s.respondError(c, apperr.Validation(errMessageNoTextExtracted))
	}

	result := s.translate(c, text, source, target)
	return c.JSON(http.StatusOK, imageTranslateResponse{
		ExtractedText:  text,
		TranslatedText: result.TranslatedText,
		SourceLang:     result.DetectedSourceLang,
		Provider:       result.Provider,
	})
}

func (s *Server) handleTestTesseract(c echo.Context) error {
	tool := s.deps.Tools.Tesseract
	result := "Tesseract not found"
	if tool.Available {
		result = fmt.Sprintf("Tesseract found at %s", tool.Path)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"result":    result,
		"available": tool.Available,
		"path":      tool.DisplayPath(),
	})
}

// handleTextToSpeech serves /text-to-speech and /image-text-to-speech.
func (s *Server) handleTextToSpeech(c echo.Context) error {
	var req speechRequest
	if err := s.decodeBody(c, payloadschema.Speech, &req); err != nil {
		return s.respondError(c, err)
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return s.respondError(c, apperr.Validation(errMessageSpeechTextRequired))
	}

	audio, err := s.synthesize(c, text, langOrDefault(req.Lang, s.opts.DefaultLang), s.opts.DefaultLang)
	if err != nil {
		return s.respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", speechAttachmentName))
	return c.Blob(http.StatusOK, contentTypeMPEG, audio)
}

func (s *Server) synthesize(c echo.Context, text, lang, fallback string) ([]byte, error) {
	if s.deps.Speech == nil || !s.deps.Speech.Available() {
		return nil, apperr.Upstream(errMessageSpeechGenerationError, speech.ErrSynthesizerUnavailable)
	}
	audio, err := s.deps.Speech.Synthesize(c.Request().Context(), text, lang, fallback)
	if err != nil {
		return nil, apperr.Upstream(errMessageSpeechGenerationError, err)
	}
	return audio, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return raw, nil
}
