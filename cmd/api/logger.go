package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mandalnilabja/chatrelay/internal/config"
	"github.com/mandalnilabja/chatrelay/internal/version"
)

func setupLogger(level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "chatrelay %s - chat completion relay\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "Relay:      POST http://localhost%s/\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Health:     GET  http://localhost%s/api/health\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Upstream:   %s\n", cfg.UpstreamURL)
	fmt.Fprintf(os.Stderr, "Model:      %s (default)\n", cfg.Defaults.Model)
	fmt.Fprintf(os.Stderr, "Config:     %s\n", config.ConfigPath())
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}
