package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"horse.fit/babel/internal/cli"
	"horse.fit/babel/internal/language"
	"horse.fit/babel/internal/translation"
)

const maxTranslateInputBytes = 1 << 20

type resolver interface {
	Resolve(ctx context.Context, text, sourceLang, targetLang string) translation.Result
}

type translateOutput struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	Provider       string `json:"provider"`
	Degraded       bool   `json:"degraded"`
}

func runTranslate(args []string, std streams) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(std.err)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	from := fs.String("from", language.Auto, "Source language (ISO 639-1 or auto)")
	to := fs.String("to", "", "Target language (ISO 639-1, for example: es, ur)")
	formatRaw := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	targetLang := normalizeLanguageFlag(*to)
	if targetLang == "" {
		fmt.Fprintln(std.err, "--to is required and must be a valid language code")
		printTranslateUsage(std.err)
		return 2
	}
	sourceLang := normalizeLanguageFlag(*from)
	if sourceLang == "" {
		sourceLang = language.Auto
	}
	format, err := parseOutputFormat(*formatRaw, outputFormatTable)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 2
	}

	text, err := translateInput(fs.Args(), std.in)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 2
	}

	cfg, err := loadConfig(envLoader, std.err)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 1
	}
	logger, err := commandLogger(cfg, std.err)
	if err != nil {
		fmt.Fprintf(std.err, "Failed to initialize logger: %v\n", err)
		return 1
	}

	if *timeout <= 0 {
		*timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rt := &runtime{cfg: cfg, logger: logger}
	defer rt.Close()
	if err := rt.buildTranslation(ctx, newUpstreamClient()); err != nil {
		fmt.Fprintf(std.err, "Failed to initialize translation: %v\n", err)
		return 1
	}

	out := translateText(ctx, rt.resolver, text, sourceLang, targetLang)
	if err := writeTranslateOutput(std.out, format, out); err != nil {
		fmt.Fprintf(std.err, "Write output failed: %v\n", err)
		return 1
	}
	if out.Degraded {
		return 1
	}
	return 0
}

func translateText(ctx context.Context, r resolver, text, sourceLang, targetLang string) translateOutput {
	result := r.Resolve(ctx, text, sourceLang, targetLang)
	return translateOutput{
		OriginalText:   text,
		TranslatedText: result.TranslatedText,
		SourceLang:     result.DetectedSourceLang,
		TargetLang:     targetLang,
		Provider:       result.Provider,
		Degraded:       result.Degraded,
	}
}

func writeTranslateOutput(w io.Writer, format string, out translateOutput) error {
	if format == outputFormatJSON {
		return printJSON(w, out)
	}
	return writeTable(w,
		[]string{"PROVIDER", "SOURCE", "TARGET", "TRANSLATION"},
		[][]string{{out.Provider, out.SourceLang, out.TargetLang, strings.ReplaceAll(out.TranslatedText, "\n", " ")}},
	)
}

// translateInput joins positional arguments, or reads stdin when there are none.
func translateInput(args []string, stdin io.Reader) (string, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" && stdin != nil {
		raw, err := io.ReadAll(io.LimitReader(stdin, maxTranslateInputBytes))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimSpace(string(raw))
	}
	if text == "" {
		return "", fmt.Errorf("translate requires text as arguments or on stdin")
	}
	return text, nil
}

func normalizeLanguageFlag(raw string) string {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if lang == "" {
		return ""
	}
	lang = strings.ReplaceAll(lang, "_", "-")
	for _, r := range lang {
		if unicode.IsLetter(r) || r == '-' {
			continue
		}
		return ""
	}
	return lang
}

func printTranslateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  babel translate --to <lang> [--from auto] [--format table|json] [--env .env] [--timeout 2m] <text...>")
	fmt.Fprintln(w, "  echo \"text\" | babel translate --to <lang>")
}
