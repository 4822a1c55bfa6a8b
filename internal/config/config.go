package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	JWTSecret           string `envconfig:"JWT_SECRET" default:""`
	SessionTTLHours     int    `envconfig:"SESSION_TTL_HOURS" default:"24"`
	SessionCookieName   string `envconfig:"SESSION_COOKIE_NAME" default:"token"`
	SessionCookieSecure bool   `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	PasswordHasher      string `envconfig:"PASSWORD_HASHER" default:"sha256"`
	UsersFile           string `envconfig:"USERS_FILE" default:"users.txt"`
	ConversationsDir    string `envconfig:"CONVERSATIONS_DIR" default:"conversations"`

	CORSAllowedOrigins string  `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173,http://127.0.0.1:3000"`
	MaxUploadMB        int     `envconfig:"MAX_UPLOAD_MB" default:"50"`
	RateLimitPerSecond float64 `envconfig:"RATE_LIMIT_PER_SECOND" default:"0"`

	TranslationPrimary         string        `envconfig:"TRANSLATION_PRIMARY" default:"google"`
	TranslationAlternate       string        `envconfig:"TRANSLATION_ALTERNATE" default:"mymemory"`
	TranslationPreferAlternate string        `envconfig:"TRANSLATION_PREFER_ALTERNATE" default:"ur,ar,hi"`
	TranslationChunkSize       int           `envconfig:"TRANSLATION_CHUNK_SIZE" default:"4000"`
	TranslationTimeout         time.Duration `envconfig:"TRANSLATION_TIMEOUT" default:"10s"`
	TranslationDefaultLang     string        `envconfig:"TRANSLATION_DEFAULT_LANG" default:"en"`
	MyMemoryEmail              string        `envconfig:"MYMEMORY_EMAIL" default:""`
	HYMTEndpoint               string        `envconfig:"HYMT_ENDPOINT" default:""`
	HYMTModel                  string        `envconfig:"HYMT_MODEL" default:"tencent/HY-MT1.5-7B"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:""`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	STTProvider       string `envconfig:"STT_PROVIDER" default:""`
	WhisperModel      string `envconfig:"WHISPER_MODEL" default:"whisper-1"`
	DeepgramAPIKey    string `envconfig:"DEEPGRAM_API_KEY" default:""`
	TTSProvider       string `envconfig:"TTS_PROVIDER" default:"gtts"`
	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY" default:""`
	ElevenLabsVoiceID string `envconfig:"ELEVENLABS_VOICE_ID" default:"21m00Tcm4TlvDq8ikWAM"`

	OCRSpaceAPIKey string `envconfig:"OCR_SPACE_API_KEY" default:"helloworld"`
	OCRSpaceURL    string `envconfig:"OCR_SPACE_URL" default:"https://api.ocr.space/parse/image"`
	FFmpegPath     string `envconfig:"FFMPEG_PATH" default:""`
	TesseractPath  string `envconfig:"TESSERACT_PATH" default:""`
	MaxImageMP     int    `envconfig:"MAX_IMAGE_MEGAPIXELS" default:"40"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" && !c.IsLocal() {
		return fmt.Errorf("JWT_SECRET is required outside the local environment")
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("SESSION_TTL_HOURS must be >= 1")
	}
	if strings.TrimSpace(c.SessionCookieName) == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.PasswordHasher)) {
	case "sha256", "bcrypt":
	default:
		return fmt.Errorf("PASSWORD_HASHER must be sha256 or bcrypt, got %q", c.PasswordHasher)
	}
	if strings.TrimSpace(c.UsersFile) == "" {
		return fmt.Errorf("USERS_FILE is required")
	}
	if strings.TrimSpace(c.ConversationsDir) == "" {
		return fmt.Errorf("CONVERSATIONS_DIR is required")
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("MAX_UPLOAD_MB must be >= 1")
	}
	if c.MaxImageMP < 0 {
		return fmt.Errorf("MAX_IMAGE_MEGAPIXELS must be >= 0")
	}
	if c.RateLimitPerSecond < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be >= 0")
	}
	if strings.TrimSpace(c.TranslationPrimary) == "" && strings.TrimSpace(c.TranslationAlternate) == "" {
		return fmt.Errorf("at least one of TRANSLATION_PRIMARY or TRANSLATION_ALTERNATE is required")
	}
	if c.TranslationChunkSize < 1 {
		return fmt.Errorf("TRANSLATION_CHUNK_SIZE must be >= 1")
	}
	if c.TranslationTimeout <= 0 {
		return fmt.Errorf("TRANSLATION_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(c.TranslationDefaultLang) == "" {
		return fmt.Errorf("TRANSLATION_DEFAULT_LANG is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.STTProvider)) {
	case "", "whisper", "deepgram":
	default:
		return fmt.Errorf("STT_PROVIDER must be whisper or deepgram, got %q", c.STTProvider)
	}
	switch strings.ToLower(strings.TrimSpace(c.TTSProvider)) {
	case "gtts", "elevenlabs":
	default:
		return fmt.Errorf("TTS_PROVIDER must be gtts or elevenlabs, got %q", c.TTSProvider)
	}
	return nil
}

func (c *Config) IsLocal() bool {
	return c != nil && strings.EqualFold(strings.TrimSpace(c.Environment), "local")
}

// SigningSecret returns the JWT secret, falling back to a fixed development
// secret in the local environment.
func (c *Config) SigningSecret() string {
	if c == nil {
		return ""
	}
	if secret := strings.TrimSpace(c.JWTSecret); secret != "" {
		return secret
	}
	return "babel-local-development-secret"
}

func (c *Config) SessionTTL() time.Duration {
	if c == nil || c.SessionTTLHours < 1 {
		return 24 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) MaxUploadBytes() int64 {
	if c == nil || c.MaxUploadMB < 1 {
		return 50 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

// MaxImagePixels returns the decode cap for image uploads.
func (c *Config) MaxImagePixels() int {
	if c == nil || c.MaxImageMP < 1 {
		return 40_000_000
	}
	return c.MaxImageMP * 1_000_000
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSAllowedOrigins, false)
}

func (c *Config) TranslationPrimaryList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.TranslationPrimary, true)
}

func (c *Config) TranslationAlternateList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.TranslationAlternate, true)
}

func (c *Config) TranslationPreferAlternateList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.TranslationPreferAlternate, true)
}

func splitList(raw string, lower bool) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	return values
}
