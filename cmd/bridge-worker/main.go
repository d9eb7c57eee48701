// Package main provides the entry point for the auto-memory bridge
// worker: an HTTP-facing process that keeps the vector Store and the
// Memory Directory in sync for as long as a session runtime wants one
// running alongside it.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/auto-memory-bridge/internal/bridge"
	"github.com/thebtf/auto-memory-bridge/internal/bridgehttp"
	"github.com/thebtf/auto-memory-bridge/internal/bridgepath"
	"github.com/thebtf/auto-memory-bridge/internal/config"
	"github.com/thebtf/auto-memory-bridge/internal/storedriver"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Str("version", Version).Msg("Starting auto-memory bridge worker")

	memoryDir := os.Getenv("AUTO_MEMORY_DIR")
	if memoryDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve working directory")
		}
		memoryDir, err = bridgepath.ResolveMemoryDir(cwd)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve memory directory")
		}
	}

	cfg, err := config.Get(memoryDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	store, err := newStore(cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}

	b, err := bridge.New(cfg, store, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bridge")
	}
	defer b.Destroy()

	addr := os.Getenv("BRIDGE_LISTEN_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8787"
	}

	srv := bridgehttp.New(b, log.Logger)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Bridge HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if _, err := b.SyncToAutoMemory(ctx); err != nil {
		log.Error().Err(err).Msg("Final sync before shutdown failed")
	}

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown error")
	}

	log.Info().Msg("Bridge worker shutdown complete")
}

// newStore picks a PostgresStore when AUTO_MEMORY_DATABASE_URL is set,
// falling back to an in-process MemoryStore for local/dev use.
func newStore(cfg *config.Config, logger zerolog.Logger) (storedriver.Store, error) {
	dsn := os.Getenv("AUTO_MEMORY_DATABASE_URL")
	if dsn == "" {
		log.Warn().Msg("AUTO_MEMORY_DATABASE_URL not set, using in-process memory store")
		return storedriver.NewMemoryStore(), nil
	}

	return storedriver.NewPostgresStore(storedriver.PostgresConfig{DSN: dsn}, logger)
}
