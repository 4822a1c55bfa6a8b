package ocr

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/babel/internal/media"
)

// ErrNoText is returned when no engine produced text for the image.
var ErrNoText = errors.New("no text could be extracted from the image")

// Engine reads text from an image payload.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
	Name() string
}

// Extractor tries the local engine on the binarized image first, then the
// remote engine on the original upload.
type Extractor struct {
	local     Engine
	remote    Engine
	maxPixels int
	logger    zerolog.Logger
}

// NewExtractor accepts nil engines; a nil engine is skipped.
func NewExtractor(local, remote Engine, logger zerolog.Logger) *Extractor {
	return &Extractor{
		local:     local,
		remote:    remote,
		maxPixels: media.DefaultMaxImagePixels,
		logger:    logger,
	}
}

// WithMaxImagePixels sets the decode cap for local preprocessing. Larger
// uploads go straight to the remote engine.
func (e *Extractor) WithMaxImagePixels(maxPixels int) *Extractor {
	if e != nil && maxPixels > 0 {
		e.maxPixels = maxPixels
	}
	return e
}

func (e *Extractor) LocalAvailable() bool {
	return e != nil && e.local != nil
}

func (e *Extractor) Available() bool {
	return e != nil && (e.local != nil || e.remote != nil)
}

func (e *Extractor) Extract(ctx context.Context, raw []byte) (string, error) {
	if e == nil {
		return "", ErrNoText
	}

	if e.local != nil {
		if text := e.runLocal(ctx, raw); text != "" {
			return text, nil
		}
	}

	if e.remote != nil {
		text, err := e.remote.Recognize(ctx, raw)
		if err != nil {
			e.logger.Warn().Err(err).Str("engine", e.remote.Name()).Msg("remote ocr failed")
		} else if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}

	return "", ErrNoText
}

func (e *Extractor) runLocal(ctx context.Context, raw []byte) string {
	bitmap, err := media.BinarizeImageLimit(raw, e.maxPixels)
	if err != nil {
		e.logger.Debug().Err(err).Msg("image preprocessing failed; skipping local ocr")
		return ""
	}
	encoded, err := media.EncodePNG(bitmap)
	if err != nil {
		e.logger.Debug().Err(err).Msg("encode preprocessed image failed")
		return ""
	}

	text, err := e.local.Recognize(ctx, encoded)
	if err != nil {
		e.logger.Warn().Err(err).Str("engine", e.local.Name()).Msg("local ocr failed")
		return ""
	}
	return strings.TrimSpace(text)
}
