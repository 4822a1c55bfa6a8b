package translation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeProvider struct {
	name       string
	autoDetect bool
	supported  []string
	translate  func(req TranslateRequest) (*TranslateResponse, error)

	mu    sync.Mutex
	calls []TranslateRequest
}

func (p *fakeProvider) Name() string                 { return p.name }
func (p *fakeProvider) SupportedLanguages() []string { return p.supported }
func (p *fakeProvider) AutoDetect() bool             { return p.autoDetect }

func (p *fakeProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.translate(req)
}

func (p *fakeProvider) Calls() []TranslateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]TranslateRequest(nil), p.calls...)
}

func failing(name string) *fakeProvider {
	return &fakeProvider{
		name: name,
		translate: func(TranslateRequest) (*TranslateResponse, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
}

func echoing(name, prefix string) *fakeProvider {
	return &fakeProvider{
		name:       name,
		autoDetect: true,
		translate: func(req TranslateRequest) (*TranslateResponse, error) {
			return &TranslateResponse{Text: prefix + req.Text, SourceLang: req.SourceLang, TargetLang: req.TargetLang}, nil
		},
	}
}

func newTestResolver(t *testing.T, opts ResolverOptions, providers ...Provider) *Resolver {
	t.Helper()

	registry := NewRegistry()
	for _, provider := range providers {
		if err := registry.Register(provider); err != nil {
			t.Fatalf("register %s: %v", provider.Name(), err)
		}
	}
	if opts.Policy.Primary == nil && opts.Policy.Alternate == nil {
		opts.Policy = NewChainPolicy([]string{"google"}, []string{"mymemory"}, []string{"ur", "ar", "hi"})
	}
	if opts.Detect == nil {
		opts.Detect = func(string) string { return "" }
	}
	return NewResolver(registry, opts, zerolog.Nop())
}

func TestResolveAllProvidersFailReturnsPlaceholder(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, ResolverOptions{}, failing("google"), failing("mymemory"))

	got := resolver.Resolve(context.Background(), "Hello friend", "auto", "es")
	if got.TranslatedText != "[Translated to Spanish] Hello friend" {
		t.Fatalf("unexpected placeholder: %q", got.TranslatedText)
	}
	if got.DetectedSourceLang != "en" {
		t.Fatalf("expected default source language, got %q", got.DetectedSourceLang)
	}
	if !got.Degraded || got.Provider != FallbackProviderName {
		t.Fatalf("expected degraded fallback result, got %+v", got)
	}
}

func TestResolvePlaceholderKeepsExplicitSource(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, ResolverOptions{}, failing("google"), failing("mymemory"))

	got := resolver.Resolve(context.Background(), "Bonjour", "fr", "de")
	if got.DetectedSourceLang != "fr" {
		t.Fatalf("expected fr, got %q", got.DetectedSourceLang)
	}
	if got.TranslatedText != "[Translated to German] Bonjour" {
		t.Fatalf("unexpected placeholder: %q", got.TranslatedText)
	}
}

func TestResolveNoProvidersRegistered(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, ResolverOptions{})
	got := resolver.Resolve(context.Background(), "hi", "auto", "ja")
	if strings.TrimSpace(got.TranslatedText) == "" {
		t.Fatalf("expected non-empty text even with no providers")
	}
}

func TestResolvePrimaryFirstForDefaultTargets(t *testing.T) {
	t.Parallel()

	google := echoing("google", "G:")
	mymemory := echoing("mymemory", "M:")
	resolver := newTestResolver(t, ResolverOptions{}, google, mymemory)

	got := resolver.Resolve(context.Background(), "hello", "en", "es")
	if got.TranslatedText != "G:hello" || got.Provider != "google" {
		t.Fatalf("expected google result, got %+v", got)
	}
	if len(mymemory.Calls()) != 0 {
		t.Fatalf("alternate should not be called when primary succeeds")
	}
}

func TestResolveUrduTriesAlternateFirst(t *testing.T) {
	t.Parallel()

	google := echoing("google", "G:")
	mymemory := echoing("mymemory", "M:")
	resolver := newTestResolver(t, ResolverOptions{}, google, mymemory)

	got := resolver.Resolve(context.Background(), "hello", "en", "ur")
	if got.Provider != "mymemory" || got.TranslatedText != "M:hello" {
		t.Fatalf("expected mymemory first for ur, got %+v", got)
	}
	if len(google.Calls()) != 0 {
		t.Fatalf("primary should not be called when alternate succeeds for ur")
	}
}

func TestResolveFallsThroughOnEmptyText(t *testing.T) {
	t.Parallel()

	empty := &fakeProvider{
		name:       "google",
		autoDetect: true,
		translate: func(TranslateRequest) (*TranslateResponse, error) {
			return &TranslateResponse{Text: "   "}, nil
		},
	}
	mymemory := echoing("mymemory", "M:")
	resolver := newTestResolver(t, ResolverOptions{}, empty, mymemory)

	got := resolver.Resolve(context.Background(), "hello", "en", "es")
	if got.Provider != "mymemory" {
		t.Fatalf("expected fall-through to mymemory, got %+v", got)
	}
}

func TestResolveSubstitutesSourceForNonDetectingProvider(t *testing.T) {
	t.Parallel()

	mymemory := echoing("mymemory", "M:")
	mymemory.autoDetect = false
	resolver := newTestResolver(t, ResolverOptions{
		Detect: func(string) string { return "fr" },
	}, failing("google"), mymemory)

	got := resolver.Resolve(context.Background(), "bonjour tout le monde", "auto", "en")
	calls := mymemory.Calls()
	if len(calls) != 1 || calls[0].SourceLang != "fr" {
		t.Fatalf("expected detected source fr, got %+v", calls)
	}
	if got.DetectedSourceLang != "fr" {
		t.Fatalf("expected detected source fr, got %q", got.DetectedSourceLang)
	}
}

func TestResolveSubstitutesDefaultWhenDetectionUnsure(t *testing.T) {
	t.Parallel()

	mymemory := echoing("mymemory", "M:")
	mymemory.autoDetect = false
	resolver := newTestResolver(t, ResolverOptions{}, mymemory)

	resolver.Resolve(context.Background(), "ok", "auto", "ur")
	calls := mymemory.Calls()
	if len(calls) != 1 || calls[0].SourceLang != "en" {
		t.Fatalf("expected default source en, got %+v", calls)
	}
}

func TestResolveChunksWithSameProvider(t *testing.T) {
	t.Parallel()

	google := echoing("google", "")
	resolver := newTestResolver(t, ResolverOptions{ChunkSize: 4}, google)

	got := resolver.Resolve(context.Background(), "abcdefghij", "en", "es")
	calls := google.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 chunk calls, got %d", len(calls))
	}
	if got.TranslatedText != "abcd efgh ij" {
		t.Fatalf("unexpected joined text: %q", got.TranslatedText)
	}
}

func TestResolveChunkFailureFailsWholeProvider(t *testing.T) {
	t.Parallel()

	var count int
	var mu sync.Mutex
	flaky := &fakeProvider{
		name:       "google",
		autoDetect: true,
		translate: func(req TranslateRequest) (*TranslateResponse, error) {
			mu.Lock()
			defer mu.Unlock()
			count++
			if count == 2 {
				return nil, errors.New("boom")
			}
			return &TranslateResponse{Text: "G:" + req.Text}, nil
		},
	}
	mymemory := echoing("mymemory", "M:")
	resolver := newTestResolver(t, ResolverOptions{ChunkSize: 3}, flaky, mymemory)

	got := resolver.Resolve(context.Background(), "aaabbbccc", "en", "es")
	if got.Provider != "mymemory" {
		t.Fatalf("expected mymemory after chunk failure, got %+v", got)
	}
	if strings.Contains(got.TranslatedText, "G:") {
		t.Fatalf("results must not be merged across providers: %q", got.TranslatedText)
	}
}

func TestResolveAppliesPerCallTimeout(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, ResolverOptions{CallTimeout: 20 * time.Millisecond}, blockingProvider{name: "google"}, echoing("mymemory", "M:"))

	started := time.Now()
	got := resolver.Resolve(context.Background(), "hello", "en", "es")
	if time.Since(started) > 2*time.Second {
		t.Fatalf("timeout was not applied")
	}
	if got.Provider != "mymemory" {
		t.Fatalf("expected fallback to mymemory, got %+v", got)
	}
}

type blockingProvider struct {
	name string
}

func (p blockingProvider) Name() string                 { return p.name }
func (p blockingProvider) SupportedLanguages() []string { return nil }
func (p blockingProvider) AutoDetect() bool             { return true }

func (p blockingProvider) Translate(ctx context.Context, _ TranslateRequest) (*TranslateResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResolveSkipsUnsupportedTarget(t *testing.T) {
	t.Parallel()

	limited := echoing("google", "G:")
	limited.supported = []string{"fr"}
	resolver := newTestResolver(t, ResolverOptions{}, limited, echoing("mymemory", "M:"))

	got := resolver.Resolve(context.Background(), "hello", "en", "es")
	if got.Provider != "mymemory" {
		t.Fatalf("expected unsupported provider to be skipped, got %+v", got)
	}
	if len(limited.Calls()) != 0 {
		t.Fatalf("unsupported provider must not be called")
	}
}

func TestChainSkipsUnregisteredNames(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, ResolverOptions{
		Policy: NewChainPolicy([]string{"google", "openai"}, []string{"mymemory"}, nil),
	}, echoing("google", ""), echoing("mymemory", ""))

	got := resolver.Chain("es")
	if strings.Join(got, ",") != "google,mymemory" {
		t.Fatalf("unexpected chain: %v", got)
	}
}
