package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/babel/internal/auth"
	"horse.fit/babel/internal/config"
	"horse.fit/babel/internal/db"
	"horse.fit/babel/internal/httpapi"
	"horse.fit/babel/internal/langdetect"
	"horse.fit/babel/internal/logging"
	"horse.fit/babel/internal/media"
	"horse.fit/babel/internal/ocr"
	"horse.fit/babel/internal/phrasebook"
	"horse.fit/babel/internal/speech"
	"horse.fit/babel/internal/translation"
)

const upstreamHTTPTimeout = 60 * time.Second

// runtime holds every collaborator built from configuration.
type runtime struct {
	cfg    *config.Config
	logger zerolog.Logger

	registry      *translation.Registry
	resolver      *translation.Resolver
	tools         media.Toolset
	audio         *media.AudioNormalizer
	transcriber   *speech.Transcriber
	synthesizer   *speech.Synthesizer
	extractor     *ocr.Extractor
	users         *db.UserStore
	conversations *db.ConversationStore
	auth          *auth.Service

	closers []func() error
}

func buildRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("build runtime: config is nil")
	}

	rt := &runtime{cfg: cfg, logger: logger}
	client := newUpstreamClient()

	if err := rt.buildTranslation(ctx, client); err != nil {
		rt.Close()
		return nil, err
	}

	rt.tools = media.ProbeTools(cfg.FFmpegPath, cfg.TesseractPath)
	rt.audio = media.NewAudioNormalizer(rt.tools.FFmpeg.Path, "")
	rt.transcriber = speech.NewTranscriber(buildRecognizer(cfg, client), logging.Component(logger, "transcriber"))
	rt.synthesizer = speech.NewSynthesizer(buildSpeechEngine(cfg, client), "", logging.Component(logger, "synthesizer"))

	var local ocr.Engine
	if rt.tools.Tesseract.Available {
		local = ocr.NewTesseractEngine(rt.tools.Tesseract.Path)
	}
	remote := ocr.NewOCRSpaceEngine(cfg.OCRSpaceAPIKey, cfg.OCRSpaceURL, client)
	rt.extractor = ocr.NewExtractor(local, remote, logging.Component(logger, "ocr")).WithMaxImagePixels(cfg.MaxImagePixels())

	rt.users = db.NewUserStore(cfg.UsersFile)
	rt.conversations = db.NewConversationStore(cfg.ConversationsDir)
	tokens := auth.NewTokenIssuer(cfg.SigningSecret(), cfg.SessionTTL())
	rt.auth = auth.NewService(rt.users, tokens, cfg.PasswordHasher, logging.Component(logger, "auth"))

	return rt, nil
}

func (rt *runtime) buildTranslation(ctx context.Context, client *http.Client) error {
	cfg := rt.cfg
	rt.registry = translation.NewRegistry()

	providers := []translation.Provider{
		translation.NewGoogleProvider(translation.DefaultGoogleEndpoint, client),
		translation.NewMyMemoryProvider(translation.DefaultMyMemoryEndpoint, cfg.MyMemoryEmail, client),
	}

	policy := translation.NewChainPolicy(
		cfg.TranslationPrimaryList(),
		cfg.TranslationAlternateList(),
		cfg.TranslationPreferAlternateList(),
	)

	if key := strings.TrimSpace(cfg.OpenAIAPIKey); key != "" {
		provider := translation.NewOpenAIProvider(key, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		providers = append(providers, provider)
		policy = policy.WithExtra(provider.Name())
	}
	if endpoint := strings.TrimSpace(cfg.HYMTEndpoint); endpoint != "" {
		provider, err := translation.NewHYMTProvider(endpoint, cfg.HYMTModel, client)
		if err != nil {
			return fmt.Errorf("create hymt provider: %w", err)
		}
		providers = append(providers, provider)
		policy = policy.WithExtra(provider.Name())
	}
	if key := strings.TrimSpace(cfg.GeminiAPIKey); key != "" {
		provider, err := translation.NewGeminiProvider(ctx, key, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("create gemini provider: %w", err)
		}
		rt.closers = append(rt.closers, provider.Close)
		providers = append(providers, provider)
		policy = policy.WithExtra(provider.Name())
	}

	for _, provider := range providers {
		if err := rt.registry.Register(provider); err != nil {
			return fmt.Errorf("register translation provider: %w", err)
		}
	}

	rt.resolver = translation.NewResolver(rt.registry, translation.ResolverOptions{
		Policy:      policy,
		ChunkSize:   cfg.TranslationChunkSize,
		CallTimeout: cfg.TranslationTimeout,
		DefaultLang: cfg.TranslationDefaultLang,
		Detect:      langdetect.DetectISO6391,
	}, logging.Component(rt.logger, "resolver"))
	return nil
}

// buildRecognizer honours STT_PROVIDER and otherwise picks whichever engine
// has credentials, preferring whisper.
func buildRecognizer(cfg *config.Config, client *http.Client) speech.Recognizer {
	name := strings.ToLower(strings.TrimSpace(cfg.STTProvider))
	openAIKey := strings.TrimSpace(cfg.OpenAIAPIKey)
	deepgramKey := strings.TrimSpace(cfg.DeepgramAPIKey)

	if name == "" {
		switch {
		case openAIKey != "":
			name = "whisper"
		case deepgramKey != "":
			name = "deepgram"
		}
	}

	switch name {
	case "whisper":
		if openAIKey == "" {
			return nil
		}
		return speech.NewWhisperRecognizer(openAIKey, cfg.WhisperModel, cfg.OpenAIBaseURL)
	case "deepgram":
		if deepgramKey == "" {
			return nil
		}
		return speech.NewDeepgramRecognizer(deepgramKey, speech.DefaultDeepgramEndpoint, client)
	default:
		return nil
	}
}

func buildSpeechEngine(cfg *config.Config, client *http.Client) speech.Engine {
	if strings.EqualFold(strings.TrimSpace(cfg.TTSProvider), "elevenlabs") {
		key := strings.TrimSpace(cfg.ElevenLabsAPIKey)
		if key == "" {
			return nil
		}
		return speech.NewElevenLabsEngine(key, cfg.ElevenLabsVoiceID, speech.DefaultElevenLabsBaseURL, client)
	}
	return speech.NewGoogleTTSEngine(speech.DefaultGoogleTTSEndpoint, client)
}

func (rt *runtime) deps() httpapi.Deps {
	return httpapi.Deps{
		Auth:          rt.auth,
		Translator:    rt.resolver,
		Audio:         rt.audio,
		Transcriber:   rt.transcriber,
		OCR:           rt.extractor,
		Speech:        rt.synthesizer,
		Conversations: rt.conversations,
		Favorites:     phrasebook.NewFavorites(),
		Tools:         rt.tools,
		Providers:     rt.registry.ProviderNames(),
	}
}

func (rt *runtime) Close() {
	if rt == nil {
		return
	}
	for _, closeFn := range rt.closers {
		if err := closeFn(); err != nil {
			rt.logger.Warn().Err(err).Msg("close runtime dependency failed")
		}
	}
	rt.closers = nil
}

func newUpstreamClient() *http.Client {
	return &http.Client{Timeout: upstreamHTTPTimeout}
}
