package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"horse.fit/babel/internal/cli"
	"horse.fit/babel/internal/db"
)

type storeStats struct {
	UsersFile        string `json:"users_file"`
	Users            int    `json:"users"`
	ConversationsDir string `json:"conversations_dir"`
	Conversations    int    `json:"conversations"`
}

func runStats(args []string, std streams) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(std.err)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Command timeout")
	formatRaw := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(std.err, "stats does not accept positional arguments")
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stats, err := collectStats(ctx, db.NewUserStore(cfg.UsersFile), db.NewConversationStore(cfg.ConversationsDir))
	if err != nil {
		fmt.Fprintf(std.err, "Failed to collect stats: %v\n", err)
		return 1
	}
	if err := writeStats(std.out, format, stats); err != nil {
		fmt.Fprintf(std.err, "Write output failed: %v\n", err)
		return 1
	}
	return 0
}

func collectStats(ctx context.Context, users *db.UserStore, conversations *db.ConversationStore) (storeStats, error) {
	userCount, err := users.CountUsers(ctx)
	if err != nil {
		return storeStats{}, err
	}
	conversationCount, err := conversations.CountConversations(ctx)
	if err != nil {
		return storeStats{}, err
	}
	return storeStats{
		UsersFile:        users.Path(),
		Users:            userCount,
		ConversationsDir: conversations.Dir(),
		Conversations:    conversationCount,
	}, nil
}

func writeStats(w io.Writer, format string, stats storeStats) error {
	if format == outputFormatJSON {
		return printJSON(w, stats)
	}
	rows := [][]string{
		{"users", strconv.Itoa(stats.Users), stats.UsersFile},
		{"conversations", strconv.Itoa(stats.Conversations), stats.ConversationsDir},
	}
	return writeTable(w, []string{"STORE", "COUNT", "LOCATION"}, rows)
}

func runShowConversation(args []string, std streams) int {
	fs := flag.NewFlagSet("show-conversation", flag.ContinueOnError)
	fs.SetOutput(std.err)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(std.err, "show-conversation expects exactly one file name")
		return 2
	}

	cfg, err := loadConfig(envLoader, std.err)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := showConversation(ctx, std.out, db.NewConversationStore(cfg.ConversationsDir), fs.Arg(0)); err != nil {
		fmt.Fprintf(std.err, "Show conversation failed: %v\n", err)
		if errors.Is(err, db.ErrNotFound) {
			return 2
		}
		return 1
	}
	return 0
}

func showConversation(ctx context.Context, w io.Writer, store *db.ConversationStore, filename string) error {
	doc, err := store.LoadConversation(ctx, filename)
	if err != nil {
		return err
	}
	return printJSON(w, doc)
}
