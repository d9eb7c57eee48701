package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/thebtf/auto-memory-bridge/internal/bridge"
	"github.com/thebtf/auto-memory-bridge/internal/bridgepath"
	"github.com/thebtf/auto-memory-bridge/internal/config"
	"github.com/thebtf/auto-memory-bridge/internal/storedriver"
)

// newBridgeFromFlags resolves --memory-dir/--database-url and
// constructs a Bridge the same way the worker entrypoint does,
// shared across every subcommand.
func newBridgeFromFlags(cmd *cobra.Command) (*bridge.Bridge, error) {
	memoryDir, _ := cmd.Flags().GetString("memory-dir")
	if memoryDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		memoryDir, err = bridgepath.ResolveMemoryDir(cwd)
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(memoryDir)
	if err != nil {
		return nil, err
	}

	dsn, _ := cmd.Flags().GetString("database-url")
	var store storedriver.Store
	if dsn == "" {
		store = storedriver.NewMemoryStore()
	} else {
		store, err = storedriver.NewPostgresStore(storedriver.PostgresConfig{DSN: dsn}, zerolog.Nop())
		if err != nil {
			return nil, err
		}
	}

	return bridge.New(cfg, store, zerolog.Nop())
}
