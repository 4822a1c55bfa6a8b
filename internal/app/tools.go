package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"horse.fit/babel/internal/cli"
	"horse.fit/babel/internal/language"
	"horse.fit/babel/internal/media"
)

func runTools(args []string, std streams) int {
	fs := flag.NewFlagSet("tools", flag.ContinueOnError)
	fs.SetOutput(std.err)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	formatRaw := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	format, err := parseOutputFormat(*formatRaw, outputFormatTable)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 2
	}

	cfg, err := loadConfig(envLoader, std.err)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 1
	}

	tools := media.ProbeTools(cfg.FFmpegPath, cfg.TesseractPath)
	if err := writeTools(std.out, format, tools); err != nil {
		fmt.Fprintf(std.err, "Write output failed: %v\n", err)
		return 1
	}
	return 0
}

func writeTools(w io.Writer, format string, tools media.Toolset) error {
	if format == outputFormatJSON {
		return printJSON(w, tools)
	}
	rows := make([][]string, 0, 2)
	for _, tool := range []media.Tool{tools.FFmpeg, tools.Tesseract} {
		rows = append(rows, []string{tool.Name, strconv.FormatBool(tool.Available), tool.DisplayPath()})
	}
	return writeTable(w, []string{"TOOL", "AVAILABLE", "PATH"}, rows)
}

func runLanguages(args []string, std streams) int {
	fs := flag.NewFlagSet("languages", flag.ContinueOnError)
	fs.SetOutput(std.err)

	targets := fs.Bool("targets", false, "Omit the auto-detect entry")
	formatRaw := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	format, err := parseOutputFormat(*formatRaw, outputFormatTable)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 2
	}

	languages := language.All()
	if *targets {
		languages = language.Targets()
	}
	if err := writeLanguages(std.out, format, languages); err != nil {
		fmt.Fprintf(std.err, "Write output failed: %v\n", err)
		return 1
	}
	return 0
}

func writeLanguages(w io.Writer, format string, languages []language.Language) error {
	if format == outputFormatJSON {
		return printJSON(w, languages)
	}
	rows := make([][]string, 0, len(languages))
	for _, lang := range languages {
		rows = append(rows, []string{lang.Code, lang.Name})
	}
	return writeTable(w, []string{"CODE", "NAME"}, rows)
}
