package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/babel/internal/language"
)

// ErrSynthesizerUnavailable is returned when no engine is configured.
var ErrSynthesizerUnavailable = errors.New("speech synthesizer not configured")

// Engine renders MP3 speech for text into outPath.
type Engine interface {
	Synthesize(ctx context.Context, text, lang, outPath string) error
	Name() string
}

var synthesisLanguages = map[string]string{
	"ar": "ar",
	"de": "de",
	"en": "en",
	"es": "es",
	"fr": "fr",
	"hi": "hi",
	"id": "id",
	"it": "it",
	"ja": "ja",
	"ko": "ko",
	"nl": "nl",
	"pl": "pl",
	"pt": "pt",
	"ru": "ru",
	"sv": "sv",
	"th": "th",
	"tr": "tr",
	"ur": "ur",
	"vi": "vi",
	"zh": "zh-CN",
}

// SynthesisLanguage maps an app language code to the engine code, using
// fallback for unknown codes.
func SynthesisLanguage(code, fallback string) string {
	if mapped, ok := synthesisLanguages[language.NormalizeCode(code)]; ok {
		return mapped
	}
	if mapped, ok := synthesisLanguages[language.NormalizeCode(fallback)]; ok {
		return mapped
	}
	return "en"
}

// Synthesizer runs an Engine against a scratch file created and removed
// inside each call.
type Synthesizer struct {
	engine   Engine
	tempRoot string
	logger   zerolog.Logger
}

func NewSynthesizer(engine Engine, tempRoot string, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		engine:   engine,
		tempRoot: tempRoot,
		logger:   logger,
	}
}

func (s *Synthesizer) Available() bool {
	return s != nil && s.engine != nil
}

func (s *Synthesizer) EngineName() string {
	if !s.Available() {
		return ""
	}
	return s.engine.Name()
}

// Synthesize returns MP3 bytes for text. lang is an app language code;
// fallbackLang applies when lang is not in the synthesis table.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang, fallbackLang string) ([]byte, error) {
	if !s.Available() {
		return nil, ErrSynthesizerUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	out, err := os.CreateTemp(s.tempRoot, "babel-tts-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("create speech scratch file: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()
	defer os.Remove(outPath)

	engineLang := SynthesisLanguage(lang, fallbackLang)
	if err := s.engine.Synthesize(ctx, text, engineLang, outPath); err != nil {
		return nil, fmt.Errorf("%s synthesis: %w", s.engine.Name(), err)
	}

	audio, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read synthesized speech: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%s produced no audio", s.engine.Name())
	}

	s.logger.Debug().
		Str("engine", s.engine.Name()).
		Str("lang", engineLang).
		Int("bytes", len(audio)).
		Msg("speech synthesized")
	return audio, nil
}
