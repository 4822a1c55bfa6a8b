package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var serviceMessages = map[string]string{
	ServiceAll:          "Babel API is running",
	ServiceAuth:         "Auth API is running",
	ServiceText:         "Translation server is running",
	ServiceAudio:        "Voice Translation API is running",
	ServiceImage:        "Image Translation API is running",
	ServiceConversation: "Conversation server is running",
	ServicePhrasebook:   "Phrasebook API is running",
}

type healthResponse struct {
	Status          string   `json:"status"`
	Service         string   `json:"service"`
	Message         string   `json:"message"`
	FFmpegAvailable bool     `json:"ffmpeg_available"`
	FFmpegPath      string   `json:"ffmpeg_path"`
	OCRAvailable    bool     `json:"ocr_available"`
	TesseractPath   string   `json:"tesseract_path"`
	Providers       []string `json:"providers"`
}

func (s *Server) handleHealth(c echo.Context) error {
	ocrAvailable := s.deps.OCR != nil && s.deps.OCR.Available()
	providers := s.deps.Providers
	if providers == nil {
		providers = []string{}
	}

	return c.JSON(http.StatusOK, healthResponse{
		Status:          "OK",
		Service:         s.opts.Service,
		Message:         serviceMessages[s.opts.Service],
		FFmpegAvailable: s.deps.Tools.FFmpeg.Available,
		FFmpegPath:      s.deps.Tools.FFmpeg.DisplayPath(),
		OCRAvailable:    ocrAvailable,
		TesseractPath:   s.deps.Tools.Tesseract.DisplayPath(),
		Providers:       providers,
	})
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":          serviceMessages[s.opts.Service],
		"service":          s.opts.Service,
		"ffmpeg_available": s.deps.Tools.FFmpeg.Available,
		"ffmpeg_path":      s.deps.Tools.FFmpeg.DisplayPath(),
	})
}
