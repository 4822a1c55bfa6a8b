package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"horse.fit/babel/internal/apperr"
	"horse.fit/babel/internal/auth"
	"horse.fit/babel/internal/cli"
	"horse.fit/babel/internal/db"
	"horse.fit/babel/internal/logging"
)

func runCreateUser(args []string, std streams) int {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(std.err)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Login email")
	password := fs.String("password", "", "Password (read from stdin when empty)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	secret, err := passwordInput(*password, std.in)
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

	service := auth.NewService(
		db.NewUserStore(cfg.UsersFile),
		auth.NewTokenIssuer(cfg.SigningSecret(), cfg.SessionTTL()),
		cfg.PasswordHasher,
		logging.Component(logger, "auth"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := createUser(ctx, service, *name, *email, secret)
	if err != nil {
		fmt.Fprintf(std.err, "Create user failed: %v\n", err)
		if apperr.KindOf(err) != apperr.KindInternal {
			return 2
		}
		return 1
	}

	fmt.Fprintf(std.out, "created user id=%s email=%s file=%s\n", session.User.ID, session.User.Email, cfg.UsersFile)
	return 0
}

func createUser(ctx context.Context, service *auth.Service, name, email, password string) (*auth.Session, error) {
	return service.Register(ctx, auth.RegisterInput{
		Name:            strings.TrimSpace(name),
		Email:           strings.TrimSpace(email),
		Password:        password,
		ConfirmPassword: password,
	})
}

func runHashPassword(args []string, std streams) int {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.SetOutput(std.err)

	hasher := fs.String("hasher", auth.HasherSHA256, "Hash scheme: sha256 or bcrypt")
	password := fs.String("password", "", "Password (read from stdin when empty)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	secret, err := passwordInput(*password, std.in)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 2
	}

	hash, err := auth.HashPassword(secret, *hasher)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 2
	}
	fmt.Fprintln(std.out, hash)
	return 0
}

// passwordInput takes the first stdin line when the flag is empty. Only the
// line terminator is stripped.
func passwordInput(flagValue string, stdin io.Reader) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if stdin != nil {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("password is required (--password or stdin)")
}
