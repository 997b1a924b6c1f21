package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/sitelens/api"
	"github.com/use-agent/sitelens/audit"
	"github.com/use-agent/sitelens/browser"
	"github.com/use-agent/sitelens/capture"
	"github.com/use-agent/sitelens/config"
	"github.com/use-agent/sitelens/crawler"
	"github.com/use-agent/sitelens/readiness"
)

// rodBrowser adapts the concrete browser to the orchestrator's page
// contract. This thin wrapper keeps crawler/ free of any rod import.
type rodBrowser struct {
	b *browser.Browser
}

func (r rodBrowser) OpenContext(ctx context.Context) (crawler.PageContext, error) {
	return r.b.OpenContext(ctx)
}

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("sitelens starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"outputDir", cfg.Capture.OutputDir,
	)

	// ── 3. Launch browser ───────────────────────────────────────────
	br, err := browser.New(cfg.Browser)
	if err != nil {
		slog.Error("failed to launch browser", "error", err)
		os.Exit(1)
	}
	defer br.Close()

	// ── 4. Wire capture pipeline ────────────────────────────────────
	verifier := readiness.New(cfg.Readiness)
	shots := capture.NewSequencer(verifier, cfg.Capture.OutputDir)

	var auditor crawler.Auditor
	if cfg.Audit.Enabled {
		auditor = audit.NewRunner(cfg.Audit, cfg.Capture.OutputDir)
		slog.Info("lighthouse audits enabled", "bin", cfg.Audit.Bin)
	}

	orc := crawler.New(rodBrowser{b: br}, shots, auditor, cfg.Crawl)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(orc, br, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// br.Close() runs via defer — kills Chrome and its contexts.
	slog.Info("sitelens stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
