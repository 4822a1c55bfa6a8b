package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultGoogleTTSEndpoint is the keyless Google Translate speech endpoint.
	DefaultGoogleTTSEndpoint = "https://translate.google.com/translate_tts"

	gttsMaxChars = 100
)

// GoogleTTSEngine fetches MP3 speech in short segments and concatenates them.
type GoogleTTSEngine struct {
	endpoint string
	client   *http.Client
}

func NewGoogleTTSEngine(endpoint string, client *http.Client) *GoogleTTSEngine {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultGoogleTTSEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GoogleTTSEngine{
		endpoint: endpoint,
		client:   client,
	}
}

func (e *GoogleTTSEngine) Name() string {
	return "gtts"
}

func (e *GoogleTTSEngine) Synthesize(ctx context.Context, text, lang, outPath string) error {
	segments := splitSpeechText(text, gttsMaxChars)
	if len(segments) == 0 {
		return fmt.Errorf("nothing to synthesize")
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer out.Close()

	for i, segment := range segments {
		if err := e.fetchSegment(ctx, segment, lang, i, len(segments), out); err != nil {
			return fmt.Errorf("segment %d/%d: %w", i+1, len(segments), err)
		}
	}
	return out.Close()
}

func (e *GoogleTTSEngine) fetchSegment(ctx context.Context, segment, lang string, idx, total int, w io.Writer) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("q", segment)
	params.Set("tl", lang)
	params.Set("ttsspeed", "1")
	params.Set("total", strconv.Itoa(total))
	params.Set("idx", strconv.Itoa(idx))
	params.Set("textlen", strconv.Itoa(utf8.RuneCountInString(segment)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tts status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("write tts audio: %w", err)
	}
	return nil
}

// splitSpeechText cuts text into pieces of at most limit runes, breaking at
// whitespace where possible.
func splitSpeechText(text string, limit int) []string {
	words := strings.Fields(text)
	segments := make([]string, 0, len(words)/8+1)

	var current []rune
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, string(current))
			current = current[:0]
		}
	}

	for _, word := range words {
		runes := []rune(word)
		for len(runes) > limit {
			flush()
			segments = append(segments, string(runes[:limit]))
			runes = runes[limit:]
		}
		needed := len(runes)
		if len(current) > 0 {
			needed++
		}
		if len(current)+needed > limit {
			flush()
		}
		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, runes...)
	}
	flush()
	return segments
}
