// Package main provides the bridge-cli command-line entry point for
// operating a bridge out-of-process: inspecting its status, and
// triggering sync/import/curate runs by hand.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bridge-cli",
	Short: "Operate the auto-memory bridge",
	Long:  "bridge-cli inspects and drives the auto-memory bridge that keeps the vector store and the Memory Directory in sync.",
}

func init() {
	rootCmd.PersistentFlags().StringP("memory-dir", "m", "", "memory directory (default: resolved from the working directory)")
	rootCmd.PersistentFlags().StringP("database-url", "d", "", "postgres DSN (default: in-process memory store)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
