package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mandalnilabja/chatrelay/internal/app"
	"github.com/mandalnilabja/chatrelay/internal/config"
	"github.com/mandalnilabja/chatrelay/internal/provider/openai"
	"github.com/mandalnilabja/chatrelay/internal/tokenizer"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler"
)

// shutdownTimeout bounds how long in-flight streams get to finish.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatrelay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := setupLogger(cfg.LogLevel)

	if err := config.EnsureConfigFile(); err != nil {
		logger.Warn("could not create default config file", "path", config.ConfigPath(), "error", err)
	}

	if os.Getenv(openai.APIKeyEnv) == "" {
		logger.Warn(openai.APIKeyEnv + " is not set; the upstream will reject relayed requests until it is")
	}

	tok, err := tokenizer.New()
	if err != nil {
		return fmt.Errorf("init tokenizer: %w", err)
	}
	defer tok.Close()

	prov := openai.New(
		openai.WithBaseURL(cfg.UpstreamURL),
		openai.WithLogger(logger),
	)

	repo := handler.NewRepo(prov, tok, cfg.Defaults, logger)
	router := app.NewRouter(repo, &app.RouterOptions{Logger: logger})
	srv := app.NewServer(cfg, router, logger)

	printStartupBanner(cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
