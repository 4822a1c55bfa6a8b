package translation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// DefaultGoogleEndpoint is the public gtx endpoint used by browser extensions.
	DefaultGoogleEndpoint = "https://translate.google.com/translate_a/single"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// GoogleProvider calls the keyless Google Translate web endpoint.
type GoogleProvider struct {
	endpointURL string
	client      *http.Client
}

func NewGoogleProvider(endpoint string, client *http.Client) *GoogleProvider {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GoogleProvider{
		endpointURL: endpoint,
		client:      client,
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) SupportedLanguages() []string {
	return []string{}
}

func (p *GoogleProvider) AutoDetect() bool {
	return true
}

func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("google provider is nil")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	targetLang := normalizeLangCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}
	sourceLang := normalizeLangCode(req.SourceLang)
	if sourceLang == "" {
		sourceLang = "auto"
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sourceLang)
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpointURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}
	httpReq.Header.Set("User-Agent", browserUserAgent)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send translation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("google translate status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(respBody)), 200))
	}

	translated, detected, err := parseGoogleResponse(respBody)
	if err != nil {
		return nil, err
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   detected,
		TargetLang:   targetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

// parseGoogleResponse reads the positional array payload:
// [[["translated","original",...],...],null,"detected",...].
func parseGoogleResponse(body []byte) (string, string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", fmt.Errorf("decode translation response: %w", err)
	}
	if len(payload) == 0 {
		return "", "", fmt.Errorf("translation response was empty")
	}

	segments, ok := payload[0].([]any)
	if !ok {
		return "", "", fmt.Errorf("translation response missing segments")
	}

	var b strings.Builder
	for _, raw := range segments {
		segment, ok := raw.([]any)
		if !ok || len(segment) == 0 {
			continue
		}
		if piece, ok := segment[0].(string); ok {
			b.WriteString(piece)
		}
	}

	translated := strings.TrimSpace(b.String())
	if translated == "" {
		return "", "", fmt.Errorf("translation response was empty")
	}

	detected := ""
	if len(payload) > 2 {
		if code, ok := payload[2].(string); ok {
			detected = normalizeLangCode(code)
		}
	}
	return translated, detected, nil
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}
