package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the bridge's current memory directory status",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBridgeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer b.Destroy()

		st := b.GetStatus()
		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("memory dir:"), st.MemoryDir)
		fmt.Printf("%s %v\n", color.New(color.Bold).Sprint("exists:"), st.Exists)
		fmt.Printf("%s %d\n", color.New(color.Bold).Sprint("index lines:"), st.IndexLines)
		fmt.Printf("%s %d\n", color.New(color.Bold).Sprint("buffered insights:"), st.BufferedInsights)
		fmt.Printf("%s %d\n", color.New(color.Bold).Sprint("topic files:"), len(st.Files))
		if !st.LastSyncTime.IsZero() {
			fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("last sync:"), st.LastSyncTime.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("last sync:"), color.YellowString("never"))
		}

		topics, err := b.ListTopics()
		if err != nil {
			return err
		}
		for _, t := range topics {
			fmt.Printf("  %s  %4d lines  updated %s\n", t.Filename, t.Lines, t.ModTime.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
