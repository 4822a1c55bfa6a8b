package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrCodecUnavailable means no audio codec binary was found.
var ErrCodecUnavailable = errors.New("audio codec unavailable")

// DefaultAudioExtension is used when the upload carries no usable extension.
const DefaultAudioExtension = ".webm"

// AudioNormalizer converts arbitrary audio uploads into 16 kHz mono PCM16 WAV.
type AudioNormalizer struct {
	codecPath string
	tempRoot  string
}

// NewAudioNormalizer builds a normalizer around the codec binary at codecPath.
// An empty path yields a normalizer that always reports ErrCodecUnavailable.
// tempRoot is the parent of the per-call scratch directory ("" for the OS default).
func NewAudioNormalizer(codecPath, tempRoot string) *AudioNormalizer {
	return &AudioNormalizer{
		codecPath: strings.TrimSpace(codecPath),
		tempRoot:  tempRoot,
	}
}

func (n *AudioNormalizer) Available() bool {
	return n != nil && n.codecPath != ""
}

func (n *AudioNormalizer) CodecPath() string {
	if n == nil {
		return ""
	}
	return n.codecPath
}

// NormalizeAudio writes raw into a scratch directory, runs the codec and
// returns the WAV bytes. The scratch directory is removed on every path.
func (n *AudioNormalizer) NormalizeAudio(ctx context.Context, raw []byte, formatHint string) ([]byte, error) {
	if !n.Available() {
		return nil, ErrCodecUnavailable
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("audio payload is empty")
	}

	tmpDir, err := os.MkdirTemp(n.tempRoot, "babel-audio-*")
	if err != nil {
		return nil, fmt.Errorf("create audio scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	input := filepath.Join(tmpDir, "input"+SanitizeExtension(formatHint))
	if err := os.WriteFile(input, raw, 0o600); err != nil {
		return nil, fmt.Errorf("write audio input: %w", err)
	}
	output := filepath.Join(tmpDir, "output.wav")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(
		ctx,
		n.codecPath,
		"-i", input,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-loglevel", "error",
		output,
		"-y",
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	wav, err := os.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("read normalized audio: %w", err)
	}
	if len(wav) == 0 {
		return nil, fmt.Errorf("ffmpeg produced empty output")
	}
	return wav, nil
}

// SanitizeExtension reduces a filename or extension hint to a short
// alphanumeric extension with a leading dot.
func SanitizeExtension(hint string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(hint)))
	if ext == "" {
		candidate := strings.ToLower(strings.TrimSpace(hint))
		if candidate != "" && !strings.ContainsAny(candidate, `/\.`) {
			ext = "." + candidate
		}
	}
	if len(ext) < 2 || len(ext) > 6 {
		return DefaultAudioExtension
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return DefaultAudioExtension
		}
	}
	return ext
}
