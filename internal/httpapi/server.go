package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"horse.fit/babel/internal/auth"
	"horse.fit/babel/internal/db"
	"horse.fit/babel/internal/media"
	"horse.fit/babel/internal/phrasebook"
	"horse.fit/babel/internal/translation"
)

// Service names select which endpoint group a process mounts.
const (
	ServiceAll          = "all"
	ServiceAuth         = "auth"
	ServiceText         = "text"
	ServiceAudio        = "audio"
	ServiceImage        = "image"
	ServiceConversation = "conversation"
	ServicePhrasebook   = "phrasebook"
)

var serviceNames = []string{
	ServiceAll,
	ServiceAuth,
	ServiceText,
	ServiceAudio,
	ServiceImage,
	ServiceConversation,
	ServicePhrasebook,
}

// ServiceNames lists the accepted values for Options.Service.
func ServiceNames() []string {
	return append([]string{}, serviceNames...)
}

func validService(name string) bool {
	for _, candidate := range serviceNames {
		if candidate == name {
			return true
		}
	}
	return false
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	Service        string
	AllowedOrigins []string
	MaxUploadBytes int64
	RateLimit      float64

	SessionCookie string
	SessionSecure bool
	DefaultLang   string
}

// Translator resolves text through the provider chain.
type Translator interface {
	Resolve(ctx context.Context, text, sourceLang, targetLang string) translation.Result
}

type AudioNormalizer interface {
	Available() bool
	NormalizeAudio(ctx context.Context, raw []byte, formatHint string) ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, locale string) string
}

type TextExtractor interface {
	Extract(ctx context.Context, raw []byte) (string, error)
	LocalAvailable() bool
	Available() bool
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, lang, fallbackLang string) ([]byte, error)
	Available() bool
}

type ConversationSaver interface {
	SaveConversation(ctx context.Context, doc db.ConversationDocument) (string, error)
}

// Deps carries the collaborators the handlers call. Nil members disable the
// endpoints that need them.
type Deps struct {
	Auth          *auth.Service
	Translator    Translator
	Audio         AudioNormalizer
	Transcriber   Transcriber
	OCR           TextExtractor
	Speech        SpeechSynthesizer
	Conversations ConversationSaver
	Phrasebook    *phrasebook.Book
	Favorites     *phrasebook.Favorites
	Tools         media.Toolset
	Providers     []string
}

type Server struct {
	deps   Deps
	logger zerolog.Logger
	opts   Options
}

func NewServer(deps Deps, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 5000
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 2 * time.Minute
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	service := strings.ToLower(strings.TrimSpace(opts.Service))
	if service == "" {
		service = ServiceAll
	}
	cookie := strings.TrimSpace(opts.SessionCookie)
	if cookie == "" {
		cookie = "token"
	}
	defaultLang := strings.TrimSpace(opts.DefaultLang)
	if defaultLang == "" {
		defaultLang = "en"
	}
	if deps.Favorites == nil {
		deps.Favorites = phrasebook.NewFavorites()
	}

	return &Server{
		deps:   deps,
		logger: logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			Service:         service,
			AllowedOrigins:  opts.AllowedOrigins,
			MaxUploadBytes:  opts.MaxUploadBytes,
			RateLimit:       opts.RateLimit,
			SessionCookie:   cookie,
			SessionSecure:   opts.SessionSecure,
			DefaultLang:     defaultLang,
		},
	}
}

// Handler builds the echo instance with middleware and the routes of the
// configured service.
func (s *Server) Handler() (*echo.Echo, error) {
	if s == nil {
		return nil, fmt.Errorf("server is not initialized")
	}
	if !validService(s.opts.Service) {
		return nil, fmt.Errorf("unknown service %q (expected one of %s)", s.opts.Service, strings.Join(serviceNames, ", "))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.opts.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	if s.opts.MaxUploadBytes > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", s.opts.MaxUploadBytes)))
	}
	if s.opts.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(s.opts.RateLimit))))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	s.mountRoutes(e)
	return e, nil
}

func (s *Server) mountRoutes(e *echo.Echo) {
	service := s.opts.Service
	mounted := func(name string) bool {
		return service == ServiceAll || service == name
	}

	e.GET("/", s.handleIndex)
	e.GET("/health", s.handleHealth)

	if mounted(ServiceAuth) {
		e.POST("/register", s.handleRegister)
		e.POST("/login", s.handleLogin)
		e.POST("/logout", s.handleLogout, s.requireAuth())
		e.GET("/user", s.handleUser, s.requireAuth())
	}

	switch service {
	case ServiceAll:
		e.POST("/translate", s.handleTranslateDispatch)
	case ServiceAudio:
		e.POST("/translate", s.handleAudioTranslate)
	case ServiceText, ServiceConversation:
		e.POST("/translate", s.handleTextTranslate)
	}

	if mounted(ServiceText) || mounted(ServiceAudio) {
		e.POST("/text-translate", s.handleTextTranslate)
	}
	if mounted(ServiceText) {
		e.GET("/languages", s.handleLanguages)
	}
	if mounted(ServiceAudio) {
		e.POST("/text-to-speech", s.handleTextToSpeech)
	}
	if mounted(ServiceImage) {
		e.POST("/image-translate", s.handleImageTranslate)
		e.POST("/image-text-to-speech", s.handleTextToSpeech)
		e.GET("/test-tesseract", s.handleTestTesseract)
	}
	if mounted(ServiceConversation) {
		e.POST("/save-conversation", s.handleSaveConversation)
		e.GET("/get-languages", s.handleLanguageIndex)
		e.POST("/detect-language", s.handleDetectLanguage)
	}
	if mounted(ServicePhrasebook) {
		api := e.Group("/api")
		api.GET("/categories", s.handleCategories)
		api.GET("/phrases", s.handlePhrases)
		api.GET("/practice-questions", s.handlePracticeQuestions)
		api.GET("/favorites", s.handleListFavorites)
		api.POST("/favorites", s.handleToggleFavorite)
		api.POST("/audio", s.handlePhraseAudio)
		api.POST("/download", s.handlePhrasebookDownload)
	}
}

func (s *Server) Start(ctx context.Context) error {
	e, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Str("service", s.opts.Service).Msg("babel server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("babel server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		s.respondError(c, err)
		return
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}
