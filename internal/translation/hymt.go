package translation

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

	"horse.fit/babel/internal/language"
)

// DefaultHYMTModel is the default HY-MT model name.
const DefaultHYMTModel = "tencent/HY-MT1.5-7B"

// HYMTProvider calls an OpenAI-compatible chat completions endpoint serving
// the HY-MT translation model. The prompt needs no source language, so it
// accepts "auto".
type HYMTProvider struct {
	endpointURL string
	model       string
	client      *http.Client
}

func NewHYMTProvider(endpoint, model string, client *http.Client) (*HYMTProvider, error) {
	base, err := normalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultHYMTModel
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &HYMTProvider{
		endpointURL: chatCompletionsURL(base),
		model:       model,
		client:      client,
	}, nil
}

func (p *HYMTProvider) Name() string {
	return "hymt"
}

func (p *HYMTProvider) ModelName() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *HYMTProvider) SupportedLanguages() []string {
	return catalogTargetCodes()
}

func (p *HYMTProvider) AutoDetect() bool {
	return true
}

func (p *HYMTProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("hymt provider is nil")
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

	body, err := json.Marshal(hymtChatRequest{
		Model:       p.model,
		Messages:    []hymtChatMessage{{Role: "user", Content: hymtPrompt(text, sourceLang, targetLang)}},
		Temperature: 0.7,
		TopP:        0.6,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal translation request: %w", err)
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
		var errPayload hymtChatErrorResponse
		if json.Unmarshal(respBody, &errPayload) == nil {
			if msg := strings.TrimSpace(errPayload.Error.Message); msg != "" {
				return nil, fmt.Errorf("hymt endpoint status %d: %s", resp.StatusCode, msg)
			}
		}
		return nil, fmt.Errorf("hymt endpoint status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(respBody)), 200))
	}

	var parsed hymtChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode translation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("translation response missing choices")
	}
	translated := strings.TrimSpace(parsed.Choices[0].Message.Content)
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

type hymtChatRequest struct {
	Model       string             `json:"model"`
	Messages    []hymtChatMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
	TopP        float64            `json:"top_p,omitempty"`
}

type hymtChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type hymtChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type hymtChatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// hymtPrompt follows the HY-MT templates: a Chinese instruction for pairs
// involving Chinese, English otherwise.
func hymtPrompt(text, sourceLang, targetLang string) string {
	target := language.Name(targetLang)
	if sourceLang == "zh" || targetLang == "zh" {
		return fmt.Sprintf("将以下文本翻译为%s，注意只需要输出翻译后的结果，不要额外解释：\n\n%s", target, text)
	}
	return fmt.Sprintf("Translate the following segment into %s, without additional explanation.\n\n%s", target, text)
}

func normalizeEndpoint(raw string) (*url.URL, error) {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return nil, fmt.Errorf("hymt endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse hymt endpoint: %w", err)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return nil, fmt.Errorf("hymt endpoint %q has no host", raw)
	}
	return parsed, nil
}

func chatCompletionsURL(endpoint *url.URL) string {
	parsed := *endpoint
	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
		parsed.Path = path
	case strings.HasSuffix(path, "/v1"):
		parsed.Path = path + "/chat/completions"
	default:
		parsed.Path = path + "/v1/chat/completions"
	}
	return parsed.String()
}
