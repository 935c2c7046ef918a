package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hyperion/internal/config"
	"hyperion/internal/loader"
)

var (
	configPath = flag.String("config", config.DefaultPath, "Path to configuration file")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("Received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, _ := config.ParseLogLevel(cfg.Bot.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("Loaded configuration", "path", *configPath, "sources", len(cfg.Sources))

	appState, err := loader.NewLoader(cfg, logger).Initialize()
	if err != nil {
		return fmt.Errorf("failed to build bot: %w", err)
	}
	bot := appState.Bot

	logger.Info("Starting bot", "bot", bot.Name())

	errChan := make(chan error, 1)
	go func() {
		errChan <- bot.Start(ctx)
	}()

	var startErr error
	select {
	case startErr = <-errChan:
		if errors.Is(startErr, context.Canceled) {
			startErr = nil
		}
	case <-ctx.Done():
	}

	logger.Info("Initiating shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := bot.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	if startErr != nil {
		return startErr
	}

	logger.Info("Bot stopped successfully")
	return nil
}
