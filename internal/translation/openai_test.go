package translation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestOpenAIProviderTranslate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "into Japanese") {
			t.Errorf("prompt missing target language: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":" こんにちは "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	provider := NewOpenAIProvider("test-key", "", srv.URL+"/v1")
	resp, err := provider.Translate(context.Background(), TranslateRequest{Text: "hello", SourceLang: "auto", TargetLang: "ja"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if resp.Text != "こんにちは" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.SourceLang != "" {
		t.Fatalf("expected no detected source, got %q", resp.SourceLang)
	}
	if provider.ModelName() != "gpt-4o-mini" {
		t.Fatalf("unexpected default model: %q", provider.ModelName())
	}
}

func TestBuildTranslationPrompt(t *testing.T) {
	t.Parallel()

	if got := buildTranslationPrompt("hi", "auto", "es"); !strings.HasPrefix(got, "Translate the following segment into Spanish") {
		t.Fatalf("unexpected prompt: %q", got)
	}
	if got := buildTranslationPrompt("hi", "fr", "de"); !strings.Contains(got, "from French into German") {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestGeminiText(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("Hola "), genai.Text("mundo")}}},
		},
	}
	if got := geminiText(resp); got != "Hola mundo" {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := geminiText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}
