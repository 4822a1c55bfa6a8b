package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"horse.fit/babel/internal/cli"
	"horse.fit/babel/internal/httpapi"
	"horse.fit/babel/internal/logging"
)

func runServe(args []string, std streams) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(std.err)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 5000, "HTTP port")
	service := fs.String("service", httpapi.ServiceAll, "Endpoint group to mount ("+strings.Join(httpapi.ServiceNames(), ", ")+")")
	readTimeout := fs.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 2*time.Minute, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(std.err, "--port must be between 1 and 65535")
		return 2
	}

	cfg, err := loadConfig(envLoader, std.err)
	if err != nil {
		fmt.Fprintln(std.err, err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(std.err, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	rt, err := buildRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to build runtime")
		fmt.Fprintf(std.err, "Failed to initialize services: %v\n", err)
		return 1
	}
	defer rt.Close()

	if !rt.tools.FFmpeg.Available {
		logger.Warn().Msg("ffmpeg not found; audio uploads will use the placeholder transcript")
	}
	if !rt.tools.Tesseract.Available {
		logger.Warn().Msg("tesseract not found; image text extraction will use the remote engine only")
	}

	srv := httpapi.NewServer(rt.deps(), logger, httpapi.Options{
		Host:            *host,
		Port:            *port,
		ReadTimeout:     *readTimeout,
		WriteTimeout:    *writeTimeout,
		ShutdownTimeout: *shutdownTimeout,
		Service:         *service,
		AllowedOrigins:  cfg.CORSAllowedOriginsList(),
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		RateLimit:       cfg.RateLimitPerSecond,
		SessionCookie:   cfg.SessionCookieName,
		SessionSecure:   cfg.SessionCookieSecure,
		DefaultLang:     cfg.TranslationDefaultLang,
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(std.err, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
