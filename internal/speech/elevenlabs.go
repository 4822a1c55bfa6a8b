package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	DefaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	elevenLabsModel          = "eleven_multilingual_v2"
)

// ElevenLabsEngine renders speech through the ElevenLabs REST API.
type ElevenLabsEngine struct {
	apiKey  string
	voiceID string
	baseURL string
	client  *http.Client
}

func NewElevenLabsEngine(apiKey, voiceID, baseURL string, client *http.Client) *ElevenLabsEngine {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultElevenLabsBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &ElevenLabsEngine{
		apiKey:  strings.TrimSpace(apiKey),
		voiceID: strings.TrimSpace(voiceID),
		baseURL: baseURL,
		client:  client,
	}
}

func (e *ElevenLabsEngine) Name() string {
	return "elevenlabs"
}

func (e *ElevenLabsEngine) Synthesize(ctx context.Context, text, lang, outPath string) error {
	payload, err := json.Marshal(map[string]string{
		"text":          text,
		"model_id":      elevenLabsModel,
		"language_code": strings.SplitN(lang, "-", 2)[0],
	})
	if err != nil {
		return fmt.Errorf("marshal tts request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tts failed: %s", strings.TrimSpace(string(b)))
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	return out.Close()
}
