package translation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultMyMemoryEndpoint is the public MyMemory lookup endpoint.
const DefaultMyMemoryEndpoint = "https://api.mymemory.translated.net/get"

// MyMemoryProvider calls the MyMemory translation memory API. It requires an
// explicit source language.
type MyMemoryProvider struct {
	endpointURL string
	email       string
	client      *http.Client
}

func NewMyMemoryProvider(endpoint, email string, client *http.Client) *MyMemoryProvider {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultMyMemoryEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &MyMemoryProvider{
		endpointURL: endpoint,
		email:       strings.TrimSpace(email),
		client:      client,
	}
}

func (p *MyMemoryProvider) Name() string {
	return "mymemory"
}

// SupportedLanguages is empty: the service resolves any ISO pair it knows and
// reports unknown ones through responseStatus.
func (p *MyMemoryProvider) SupportedLanguages() []string {
	return []string{}
}

func (p *MyMemoryProvider) AutoDetect() bool {
	return false
}

func (p *MyMemoryProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("mymemory provider is nil")
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
	if sourceLang == "" || sourceLang == "auto" {
		return nil, fmt.Errorf("mymemory requires an explicit source language")
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", sourceLang+"|"+targetLang)
	if p.email != "" {
		params.Set("de", p.email)
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpointURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}

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
		return nil, fmt.Errorf("mymemory status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(respBody)), 200))
	}

	var parsed myMemoryResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode translation response: %w", err)
	}
	if status := parsed.status(); status != 0 && status != http.StatusOK {
		return nil, fmt.Errorf("mymemory response status %d: %s", status, strings.TrimSpace(parsed.ResponseDetails))
	}

	translated := strings.TrimSpace(parsed.ResponseData.TranslatedText)
	if translated == "" {
		return nil, fmt.Errorf("translation response was empty")
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		ProviderName: p.Name(),
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
}

// status reads responseStatus, which the API sends as a number or a string.
func (r myMemoryResponse) status() int {
	raw := strings.Trim(strings.TrimSpace(string(r.ResponseStatus)), `"`)
	if raw == "" || raw == "null" {
		return 0
	}
	status, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return status
}
