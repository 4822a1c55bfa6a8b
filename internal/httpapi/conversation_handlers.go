package httpapi

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"horse.fit/babel/internal/apperr"
	"horse.fit/babel/internal/db"
	"horse.fit/babel/internal/globaltime"
	"horse.fit/babel/internal/langdetect"
	"horse.fit/babel/internal/payloadschema"
)

type detectLanguageRequest struct {
	Text string `json:"text"`
}

type saveConversationRequest struct {
	Conversation []json.RawMessage `json:"conversation"`
	SourceLang   string            `json:"source_lang"`
	TargetLang   string            `json:"target_lang"`
}

func (s *Server) handleDetectLanguage(c echo.Context) error {
	var req detectLanguageRequest
	if err := s.decodeBody(c, payloadschema.DetectLanguage, &req); err != nil {
		return s.respondError(c, err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return s.respondError(c, apperr.Validation("No text provided"))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"text":              req.Text,
		"detected_language": langdetect.Detect(req.Text),
	})
}

func (s *Server) handleSaveConversation(c echo.Context) error {
	if s.deps.Conversations == nil {
		return internalError(c, "Conversation storage is not configured")
	}

	var req saveConversationRequest
	if err := s.decodeBody(c, payloadschema.SaveConversation, &req); err != nil {
		return s.respondError(c, err)
	}
	if len(req.Conversation) == 0 {
		return s.respondError(c, apperr.Validation("No conversation data provided"))
	}

	doc := db.ConversationDocument{
		Metadata: db.ConversationMetadata{
			SourceLanguage: langOrDefault(req.SourceLang, "en"),
			TargetLanguage: langOrDefault(req.TargetLang, "es"),
			SavedAt:        globaltime.Local(),
		},
		Conversation: req.Conversation,
	}

	filename, err := s.deps.Conversations.SaveConversation(c.Request().Context(), doc)
	if err != nil {
		return s.respondError(c, apperr.Internal("could not save conversation", err))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Conversation saved successfully",
		"filename": filename,
	})
}
