package speech

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// SentinelNoSpeech is returned when the recognizer heard nothing usable.
	SentinelNoSpeech = "Could not understand audio"
	// SentinelErrorPrefix starts every soft-failure transcript.
	SentinelErrorPrefix = "Error: "
)

var (
	// ErrNoSpeech is returned by recognizers when the audio held no speech.
	ErrNoSpeech = errors.New("no speech recognized")
	// ErrRecognizerUnavailable is returned when no recognizer is configured.
	ErrRecognizerUnavailable = errors.New("speech recognizer not configured")
)

// Recognizer turns 16 kHz mono WAV audio into text. An empty locale asks the
// engine to detect the language.
type Recognizer interface {
	Recognize(ctx context.Context, wav []byte, locale string) (string, error)
	Name() string
}

// IsSentinel reports whether text is a soft-failure transcript.
func IsSentinel(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == SentinelNoSpeech || strings.HasPrefix(trimmed, SentinelErrorPrefix)
}

// Transcriber wraps a Recognizer with the locale retry and sentinel mapping.
type Transcriber struct {
	recognizer Recognizer
	logger     zerolog.Logger
}

func NewTranscriber(recognizer Recognizer, logger zerolog.Logger) *Transcriber {
	return &Transcriber{
		recognizer: recognizer,
		logger:     logger,
	}
}

func (t *Transcriber) Available() bool {
	return t != nil && t.recognizer != nil
}

func (t *Transcriber) RecognizerName() string {
	if !t.Available() {
		return ""
	}
	return t.recognizer.Name()
}

// Transcribe always returns a string: the transcript, or a sentinel.
func (t *Transcriber) Transcribe(ctx context.Context, wav []byte, locale string) string {
	if !t.Available() {
		return SentinelErrorPrefix + ErrRecognizerUnavailable.Error()
	}

	text, err := t.recognize(ctx, wav, locale)
	if err == nil {
		return text
	}
	t.logger.Debug().
		Err(err).
		Str("recognizer", t.recognizer.Name()).
		Str("locale", locale).
		Msg("recognition with locale failed; retrying with auto-detect")

	text, err = t.recognize(ctx, wav, "")
	if err == nil {
		return text
	}
	if errors.Is(err, ErrNoSpeech) {
		return SentinelNoSpeech
	}

	t.logger.Warn().
		Err(err).
		Str("recognizer", t.recognizer.Name()).
		Msg("speech recognition failed")
	return SentinelErrorPrefix + err.Error()
}

func (t *Transcriber) recognize(ctx context.Context, wav []byte, locale string) (string, error) {
	text, err := t.recognizer.Recognize(ctx, wav, locale)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
