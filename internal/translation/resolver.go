package translation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/babel/internal/langdetect"
	"horse.fit/babel/internal/language"
)

const (
	DefaultChunkSize   = 4000
	DefaultCallTimeout = 10 * time.Second
	DefaultSourceLang  = "en"
)

// ResolverOptions tunes a Resolver. Zero values use the defaults above.
type ResolverOptions struct {
	Policy      ChainPolicy
	ChunkSize   int
	CallTimeout time.Duration
	DefaultLang string
	// Detect guesses the source language for providers without auto-detect.
	// It returns "" when unsure.
	Detect func(text string) string
}

// Resolver walks the provider chain for a target language and returns the
// first usable translation, or a placeholder when every provider fails.
type Resolver struct {
	registry    *Registry
	policy      ChainPolicy
	chunkSize   int
	callTimeout time.Duration
	defaultLang string
	detect      func(string) string
	logger      zerolog.Logger
}

func NewResolver(registry *Registry, opts ResolverOptions, logger zerolog.Logger) *Resolver {
	if registry == nil {
		registry = NewRegistry()
	}
	chunkSize := opts.ChunkSize
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	defaultLang := normalizeLangCode(opts.DefaultLang)
	if defaultLang == "" {
		defaultLang = DefaultSourceLang
	}
	detect := opts.Detect
	if detect == nil {
		detect = langdetect.DetectISO6391
	}

	return &Resolver{
		registry:    registry,
		policy:      opts.Policy,
		chunkSize:   chunkSize,
		callTimeout: callTimeout,
		defaultLang: defaultLang,
		detect:      detect,
		logger:      logger,
	}
}

// Chain returns the provider names that would be tried for targetLang, in
// order, skipping names that are not registered.
func (r *Resolver) Chain(targetLang string) []string {
	names := r.policy.Select(targetLang)
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := r.registry.Provider(name); err != nil {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Resolve never fails. Callers validate text length beforehand.
func (r *Resolver) Resolve(ctx context.Context, text, sourceLang, targetLang string) Result {
	source := normalizeLangCode(sourceLang)
	if source == "" {
		source = language.Auto
	}
	target := normalizeLangCode(targetLang)

	for _, name := range r.Chain(target) {
		provider, err := r.registry.Provider(name)
		if err != nil {
			continue
		}
		if !supportsTarget(provider, target) {
			r.logger.Debug().
				Str("provider", name).
				Str("target_lang", target).
				Msg("provider does not support target language")
			continue
		}

		started := time.Now()
		result, err := r.attempt(ctx, provider, text, source, target)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("provider", name).
				Str("target_lang", target).
				Msg("translation provider failed")
			continue
		}

		r.logger.Debug().
			Str("provider", name).
			Str("target_lang", target).
			Int64("latency_ms", time.Since(started).Milliseconds()).
			Msg("translation resolved")
		return result
	}

	r.logger.Warn().
		Str("target_lang", target).
		Msg("all translation providers failed; returning placeholder")

	detected := source
	if detected == language.Auto {
		detected = r.defaultLang
	}
	return Result{
		TranslatedText:     Placeholder(text, target),
		DetectedSourceLang: detected,
		Provider:           FallbackProviderName,
		Degraded:           true,
	}
}

func (r *Resolver) attempt(ctx context.Context, provider Provider, text, source, target string) (Result, error) {
	callSource := source
	if callSource == language.Auto && !provider.AutoDetect() {
		callSource = r.detect(text)
		if callSource == "" {
			callSource = r.defaultLang
		}
	}

	chunks := splitChunks(text, r.chunkSize)
	translated := make([]string, 0, len(chunks))
	detected := ""
	for i, chunk := range chunks {
		resp, err := r.call(ctx, provider, TranslateRequest{
			Text:       chunk,
			SourceLang: callSource,
			TargetLang: target,
		})
		if err != nil {
			return Result{}, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if detected == "" {
			detected = normalizeLangCode(resp.SourceLang)
		}
		translated = append(translated, strings.TrimSpace(resp.Text))
	}

	if detected == "" || detected == language.Auto {
		detected = callSource
	}
	if detected == language.Auto {
		detected = r.defaultLang
	}

	return Result{
		TranslatedText:     strings.Join(translated, " "),
		DetectedSourceLang: detected,
		Provider:           provider.Name(),
	}, nil
}

func (r *Resolver) call(ctx context.Context, provider Provider, req TranslateRequest) (*TranslateResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	resp, err := provider.Translate(callCtx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("provider %s returned empty text", provider.Name())
	}
	return resp, nil
}
