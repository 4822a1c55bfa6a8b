package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultDeepgramEndpoint is the prerecorded transcription endpoint.
const DefaultDeepgramEndpoint = "https://api.deepgram.com/v1/listen"

// DeepgramRecognizer transcribes through the Deepgram REST API.
type DeepgramRecognizer struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewDeepgramRecognizer(apiKey, endpoint string, client *http.Client) *DeepgramRecognizer {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultDeepgramEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &DeepgramRecognizer{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: endpoint,
		client:   client,
	}
}

func (r *DeepgramRecognizer) Name() string {
	return "deepgram"
}

func (r *DeepgramRecognizer) Recognize(ctx context.Context, wav []byte, locale string) (string, error) {
	if len(wav) == 0 {
		return "", ErrNoSpeech
	}

	params := url.Values{}
	params.Set("model", "nova-2")
	params.Set("smart_format", "true")
	if locale = strings.TrimSpace(locale); locale != "" {
		params.Set("language", locale)
	} else {
		params.Set("detect_language", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"?"+params.Encode(), bytes.NewReader(wav))
	if err != nil {
		return "", fmt.Errorf("build deepgram request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+r.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read deepgram response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepgram status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode deepgram: %w", err)
	}

	if len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", ErrNoSpeech
	}
	transcript := strings.TrimSpace(parsed.Results.Channels[0].Alternatives[0].Transcript)
	if transcript == "" {
		return "", ErrNoSpeech
	}
	return transcript, nil
}
