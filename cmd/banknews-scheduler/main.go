package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"github.com/pevans/banknews"
	"github.com/pevans/banknews/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (APP_CONFIG_FILE)")
	shutdownTimeout := flag.Duration("shutdown-timeout", 60*time.Second, "How long to wait for an in-flight run on shutdown")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.SetupLogging()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load timezone")
	}

	rt, err := banknews.Open(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open runtime")
	}
	defer rt.Close()

	scheduler, err := banknews.NewScheduler(rt.Job, cfg.Schedule, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	// Start scheduler in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- scheduler.Run(ctx)
	}()

	// Wait for signal or error
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
		cancel()

		// Wait for shutdown with timeout
		shutdownTimer := time.NewTimer(*shutdownTimeout)
		select {
		case <-errChan:
			log.Info().Msg("scheduler stopped")
		case <-shutdownTimer.C:
			log.Warn().Msg("shutdown timeout exceeded, forcing exit")
		}
	case err := <-errChan:
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler error")
		}
	}
}
