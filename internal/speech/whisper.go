package speech

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"horse.fit/babel/internal/language"
)

// WhisperRecognizer transcribes through the OpenAI audio transcription API.
type WhisperRecognizer struct {
	client *openai.Client
	model  string
}

func NewWhisperRecognizer(apiKey, model, baseURL string) *WhisperRecognizer {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
		cfg.BaseURL = trimmed
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperRecognizer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (r *WhisperRecognizer) Name() string {
	return "whisper"
}

func (r *WhisperRecognizer) Recognize(ctx context.Context, wav []byte, locale string) (string, error) {
	if len(wav) == 0 {
		return "", ErrNoSpeech
	}

	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    r.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(wav),
		Language: language.NormalizeCode(locale),
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}
