package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attendbot/internal/calendars"
	httpx "github.com/attendbot/internal/http"
	"github.com/attendbot/internal/http/static"
	"github.com/attendbot/internal/http/templates"
	"github.com/attendbot/internal/statistics"
	"github.com/attendbot/internal/telegram"
)

func runServe(ctx context.Context, cfg *Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tee := telegram.NewSlogHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg),
	}))
	logger := slog.New(tee)
	slog.SetDefault(logger)

	a, err := openApp(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	go a.sessions.ExpireEvery(ctx, min(cfg.sessionTimeout, time.Minute), cfg.sessionTimeout)

	if cfg.telegramToken != "" {
		bot, err := telegram.NewBot(telegram.NewStore(a.db), a.sessions, a.location, cfg.telegramToken)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		tee.Attach(bot)
		go func() {
			if err := bot.Listen(ctx); err != nil {
				logger.Error("telegram listen", "error", err)
			}
		}()
	}

	var renderer templates.Renderer
	var staticHandler http.Handler
	if cfg.watch {
		renderer = templates.NewFilesystemTemplates("./internal/http/templates")
		staticHandler = static.NewFilesystemHandler("./internal/http/static/files")
	} else {
		renderer = templates.NewEmbedTemplates()
		staticHandler, err = static.NewEmbedHandler()
		if err != nil {
			return fmt.Errorf("static files: %w", err)
		}
	}

	calendarsService := calendars.NewService(calendars.NewStore(a.db), a.sessions, cfg.classDuration)
	statisticsService := statistics.NewService(a.location)

	httpServer := http.Server{
		Handler: httpx.Handler(
			logger,
			renderer,
			staticHandler,
			a.sessions,
			statisticsService,
			calendarsService,
			a.location,
		),
	}

	// Wait for shut down in a separate goroutine.
	errCh := make(chan error)
	go func() {
		shutdownCh := make(chan os.Signal, 1)
		signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdownCh

		logger.Info("shutting down", "signal", sig.String())
		cancel()

		shutdownTimeout := 15 * time.Second
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		errCh <- httpServer.Shutdown(shutdownCtx)
	}()

	ln, err := net.Listen("tcp", cfg.address)
	if err != nil {
		return fmt.Errorf("tcp: %w", err)
	}
	logger.Info("listening", "address", ln.Addr().String())

	if err := httpServer.Serve(ln); err != http.ErrServerClosed {
		return fmt.Errorf("http serve: %w", err)
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("application stopped")
	return nil
}
