package app

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"horse.fit/babel/internal/auth"
	"horse.fit/babel/internal/config"
	"horse.fit/babel/internal/db"
	"horse.fit/babel/internal/language"
	"horse.fit/babel/internal/media"
	"horse.fit/babel/internal/speech"
	"horse.fit/babel/internal/translation"
)

type fakeResolver struct {
	result translation.Result
	calls  int
}

func (f *fakeResolver) Resolve(_ context.Context, _, _, _ string) translation.Result {
	f.calls++
	return f.result
}

func runCommand(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, streams{in: strings.NewReader(stdin), out: &stdout, err: &stderr})
	return code, stdout.String(), stderr.String()
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	if code, _, stderr := runCommand(t, ""); code != 2 || !strings.Contains(stderr, "babel <command>") {
		t.Fatalf("no args: code=%d stderr=%q", code, stderr)
	}
	if code, _, _ := runCommand(t, "", "help"); code != 0 {
		t.Fatalf("help: expected 0, got %d", code)
	}
	code, _, stderr := runCommand(t, "", "ingest")
	if code != 2 || !strings.Contains(stderr, "unknown command: ingest") {
		t.Fatalf("unknown: code=%d stderr=%q", code, stderr)
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	if got, err := parseOutputFormat(" JSON ", outputFormatTable); err != nil || got != outputFormatJSON {
		t.Fatalf("expected json, got %q err=%v", got, err)
	}
	if got, err := parseOutputFormat("", outputFormatTable); err != nil || got != outputFormatTable {
		t.Fatalf("expected default table, got %q err=%v", got, err)
	}
	if _, err := parseOutputFormat("yaml", outputFormatTable); err == nil {
		t.Fatalf("expected error for yaml")
	}
}

func TestNormalizeLanguageFlag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: " ES ", want: "es"},
		{in: "zh_CN", want: "zh-cn"},
		{in: "auto", want: "auto"},
		{in: "e5", want: ""},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		if got := normalizeLanguageFlag(tc.in); got != tc.want {
			t.Fatalf("normalizeLanguageFlag(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTranslateInput(t *testing.T) {
	t.Parallel()

	got, err := translateInput([]string{"good", "morning"}, strings.NewReader("ignored"))
	if err != nil || got != "good morning" {
		t.Fatalf("args: got %q err=%v", got, err)
	}
	got, err = translateInput(nil, strings.NewReader("  from stdin\n"))
	if err != nil || got != "from stdin" {
		t.Fatalf("stdin: got %q err=%v", got, err)
	}
	if _, err := translateInput(nil, strings.NewReader("   ")); err == nil {
		t.Fatalf("expected error for blank input")
	}
}

func TestTranslateRequiresTarget(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCommand(t, "", "translate", "hello")
	if code != 2 || !strings.Contains(stderr, "--to is required") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestTranslateTextOutput(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{result: translation.Result{
		TranslatedText:     "hola",
		DetectedSourceLang: "en",
		Provider:           "google",
	}}
	out := translateText(context.Background(), resolver, "hello", language.Auto, "es")
	if resolver.calls != 1 {
		t.Fatalf("expected one resolve call, got %d", resolver.calls)
	}

	var buf bytes.Buffer
	if err := writeTranslateOutput(&buf, outputFormatJSON, out); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded["translated_text"] != "hola" || decoded["original_text"] != "hello" || decoded["target_lang"] != "es" {
		t.Fatalf("unexpected json output: %v", decoded)
	}

	buf.Reset()
	if err := writeTranslateOutput(&buf, outputFormatTable, out); err != nil {
		t.Fatalf("write table: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "PROVIDER") || !strings.Contains(buf.String(), "hola") {
		t.Fatalf("unexpected table output: %q", buf.String())
	}
}

func TestLanguagesCommand(t *testing.T) {
	t.Parallel()

	code, stdout, _ := runCommand(t, "", "languages", "--targets", "--format", "json")
	if code != 0 {
		t.Fatalf("expected 0, got %d", code)
	}
	var languages []language.Language
	if err := json.Unmarshal([]byte(stdout), &languages); err != nil {
		t.Fatalf("decode languages: %v", err)
	}
	if len(languages) != len(language.Targets()) {
		t.Fatalf("expected %d targets, got %d", len(language.Targets()), len(languages))
	}
	for _, lang := range languages {
		if lang.Code == language.Auto {
			t.Fatalf("targets must not include auto")
		}
	}
}

func TestWriteTools(t *testing.T) {
	t.Parallel()

	tools := media.Toolset{
		FFmpeg:    media.Tool{Name: "ffmpeg", Path: "/usr/bin/ffmpeg", Available: true},
		Tesseract: media.Tool{Name: "tesseract"},
	}
	var buf bytes.Buffer
	if err := writeTools(&buf, outputFormatTable, tools); err != nil {
		t.Fatalf("write tools: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "/usr/bin/ffmpeg") || !strings.Contains(out, "Not found") {
		t.Fatalf("unexpected tools table: %q", out)
	}
}

func TestHashPasswordCommand(t *testing.T) {
	t.Parallel()

	sum := sha256.Sum256([]byte(" secret "))
	want := hex.EncodeToString(sum[:])

	code, stdout, stderr := runCommand(t, " secret \n", "hash-password")
	if code != 0 {
		t.Fatalf("expected 0, got %d (%s)", code, stderr)
	}
	if strings.TrimSpace(stdout) != want {
		t.Fatalf("expected untrimmed sha256 digest %s, got %q", want, stdout)
	}

	code, stdout, _ = runCommand(t, "", "hash-password", "--hasher", "bcrypt", "--password", "secret1")
	if code != 0 || !auth.VerifyPassword("secret1", strings.TrimSpace(stdout)) {
		t.Fatalf("bcrypt: code=%d out=%q", code, stdout)
	}

	if code, _, _ := runCommand(t, "", "hash-password"); code != 2 {
		t.Fatalf("missing password: expected 2, got %d", code)
	}
	if code, _, _ := runCommand(t, "", "hash-password", "--hasher", "md5", "--password", "x"); code != 2 {
		t.Fatalf("unknown hasher: expected 2, got %d", code)
	}
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	store := db.NewUserStore(filepath.Join(t.TempDir(), "users.txt"))
	service := auth.NewService(store, auth.NewTokenIssuer("test-secret", 0), auth.HasherSHA256, zerolog.Nop())

	session, err := createUser(context.Background(), service, " Ada ", "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if session.User.Name != "Ada" || session.User.ID != auth.UserID("ada@example.com") {
		t.Fatalf("unexpected user: %+v", session.User)
	}
	if _, err := createUser(context.Background(), service, "Ada", "ada@example.com", "secret1"); err == nil {
		t.Fatalf("expected duplicate email error")
	}
}

func TestBuildRecognizer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{name: "none", cfg: config.Config{}, want: ""},
		{name: "auto whisper", cfg: config.Config{OpenAIAPIKey: "k", DeepgramAPIKey: "d"}, want: "whisper"},
		{name: "auto deepgram", cfg: config.Config{DeepgramAPIKey: "d"}, want: "deepgram"},
		{name: "explicit deepgram", cfg: config.Config{STTProvider: "deepgram", OpenAIAPIKey: "k", DeepgramAPIKey: "d"}, want: "deepgram"},
		{name: "explicit without key", cfg: config.Config{STTProvider: "whisper", DeepgramAPIKey: "d"}, want: ""},
	}
	for _, tc := range cases {
		cfg := tc.cfg
		recognizer := buildRecognizer(&cfg, newUpstreamClient())
		got := ""
		switch recognizer.(type) {
		case *speech.WhisperRecognizer:
			got = "whisper"
		case *speech.DeepgramRecognizer:
			got = "deepgram"
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestBuildSpeechEngine(t *testing.T) {
	t.Parallel()

	if _, ok := buildSpeechEngine(&config.Config{TTSProvider: "gtts"}, newUpstreamClient()).(*speech.GoogleTTSEngine); !ok {
		t.Fatalf("expected google tts engine")
	}
	if engine := buildSpeechEngine(&config.Config{TTSProvider: "elevenlabs"}, newUpstreamClient()); engine != nil {
		t.Fatalf("expected no engine without an elevenlabs key, got %T", engine)
	}
	engine := buildSpeechEngine(&config.Config{TTSProvider: "ElevenLabs", ElevenLabsAPIKey: "k"}, newUpstreamClient())
	if _, ok := engine.(*speech.ElevenLabsEngine); !ok {
		t.Fatalf("expected elevenlabs engine, got %T", engine)
	}
}

func TestBuildRuntime(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := &config.Config{
		Environment:                "local",
		SessionTTLHours:            24,
		PasswordHasher:             auth.HasherSHA256,
		UsersFile:                  filepath.Join(dir, "users.txt"),
		ConversationsDir:           filepath.Join(dir, "conversations"),
		TranslationPrimary:         "google",
		TranslationAlternate:       "mymemory",
		TranslationPreferAlternate: "ur",
		TranslationChunkSize:       4000,
		TranslationDefaultLang:     "en",
		TTSProvider:                "gtts",
		FFmpegPath:                 filepath.Join(dir, "missing-ffmpeg"),
	}

	rt, err := buildRuntime(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer rt.Close()

	names := rt.registry.ProviderNames()
	if strings.Join(names, ",") != "google,mymemory" {
		t.Fatalf("unexpected providers: %v", names)
	}
	if chain := rt.resolver.Chain("ur"); len(chain) == 0 || chain[0] != "mymemory" {
		t.Fatalf("expected mymemory first for ur, got %v", chain)
	}
	if rt.transcriber.Available() {
		t.Fatalf("transcriber must be unavailable without credentials")
	}
	if !rt.synthesizer.Available() {
		t.Fatalf("expected google tts synthesizer")
	}
	if !rt.extractor.Available() {
		t.Fatalf("expected the remote ocr engine to be wired")
	}

	deps := rt.deps()
	if deps.Auth == nil || deps.Translator == nil || deps.Favorites == nil || len(deps.Providers) != 2 {
		t.Fatalf("unexpected deps: %+v", deps)
	}
}

func TestBuildRuntimeRejectsNilConfig(t *testing.T) {
	t.Parallel()

	if _, err := buildRuntime(context.Background(), nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildRuntimeAppendsHYMTProvider(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := &config.Config{
		Environment:          "local",
		PasswordHasher:       auth.HasherSHA256,
		UsersFile:            filepath.Join(dir, "users.txt"),
		ConversationsDir:     filepath.Join(dir, "conversations"),
		TranslationPrimary:   "google",
		TranslationAlternate: "mymemory",
		HYMTEndpoint:         "mt.example.com",
	}

	rt, err := buildRuntime(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("build runtime: %v", err)
	}
	defer rt.Close()

	chain := rt.resolver.Chain("es")
	if strings.Join(chain, ",") != "google,hymt,mymemory" {
		t.Fatalf("unexpected chain: %v", chain)
	}
}
