package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/babel/internal/apperr"
	"horse.fit/babel/internal/payloadschema"
	"horse.fit/babel/internal/phrasebook"
)

type favoriteRequest struct {
	PhraseID *int `json:"phraseId"`
}

type phrasebookDownloadRequest struct {
	Language string `json:"language"`
}

func (s *Server) phrasebook() (*phrasebook.Book, error) {
	if s.deps.Phrasebook != nil {
		return s.deps.Phrasebook, nil
	}
	book, err := phrasebook.Default()
	if err != nil {
		return nil, apperr.Internal("could not load phrasebook", err)
	}
	return book, nil
}

func (s *Server) handleCategories(c echo.Context) error {
	book, err := s.phrasebook()
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, book.Categories)
}

func (s *Server) handlePhrases(c echo.Context) error {
	book, err := s.phrasebook()
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, book.PhrasesByCategory())
}

func (s *Server) handlePracticeQuestions(c echo.Context) error {
	book, err := s.phrasebook()
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, book.PracticeQuestions)
}

func (s *Server) handleListFavorites(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Favorites.List())
}

func (s *Server) handleToggleFavorite(c echo.Context) error {
	var req favoriteRequest
	if err := s.decodeBody(c, payloadschema.Favorite, &req); err != nil {
		return s.respondError(c, err)
	}
	if req.PhraseID == nil {
		return s.respondError(c, apperr.Validation("phraseId is required"))
	}
	return c.JSON(http.StatusOK, s.deps.Favorites.Toggle(*req.PhraseID))
}

// handlePhraseAudio streams pronunciation audio inline.
func (s *Server) handlePhraseAudio(c echo.Context) error {
	var req speechRequest
	if err := s.decodeBody(c, payloadschema.Speech, &req); err != nil {
		return s.respondError(c, err)
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return s.respondError(c, apperr.Validation(errMessageSpeechTextRequired))
	}

	lang := langOrDefault(req.Language, defaultPhrasebookLanguage)
	audio, err := s.synthesize(c, text, lang, defaultPhrasebookLanguage)
	if err != nil {
		return s.respondError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", phraseAudioName))
	return c.Blob(http.StatusOK, contentTypeMPEG, audio)
}

func (s *Server) handlePhrasebookDownload(c echo.Context) error {
	var req phrasebookDownloadRequest
	if err := s.decodeBody(c, payloadschema.PhrasebookDownload, &req); err != nil {
		return s.respondError(c, err)
	}
	lang := langOrDefault(req.Language, defaultPhrasebookLanguage)

	book, err := s.phrasebook()
	if err != nil {
		return s.respondError(c, err)
	}
	pdf, err := phrasebook.RenderPDF(book, lang)
	if err != nil {
		return s.respondError(c, apperr.Internal("could not render phrasebook", err))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", phrasebook.PDFFilename(lang)))
	return c.Blob(http.StatusOK, contentTypePDF, pdf)
}
