package app

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	return run(args, streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
}

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func run(args []string, std streams) int {
	if len(args) == 0 {
		printUsage(std.err)
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage(std.err)
		return 0
	case "serve":
		return runServe(args[1:], std)
	case "translate":
		return runTranslate(args[1:], std)
	case "languages":
		return runLanguages(args[1:], std)
	case "tools":
		return runTools(args[1:], std)
	case "stats":
		return runStats(args[1:], std)
	case "show-conversation":
		return runShowConversation(args[1:], std)
	case "create-user":
		return runCreateUser(args[1:], std)
	case "hash-password":
		return runHashPassword(args[1:], std)
	default:
		fmt.Fprintf(std.err, "unknown command: %s\n\n", args[0])
		printUsage(std.err)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "babel CLI")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  babel              <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve              Start the Echo API server (--service selects the endpoint group)")
	fmt.Fprintln(w, "  translate          Translate text through the provider chain")
	fmt.Fprintln(w, "  languages          List supported languages")
	fmt.Fprintln(w, "  tools              Report ffmpeg and tesseract availability")
	fmt.Fprintln(w, "  stats              Count stored users and saved conversations")
	fmt.Fprintln(w, "  show-conversation  Print a saved conversation as JSON")
	fmt.Fprintln(w, "  create-user        Add a user to the users file")
	fmt.Fprintln(w, "  hash-password      Print a password digest for the configured hasher")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Use \"babel <command> -h\" for command-specific flags.")
}
