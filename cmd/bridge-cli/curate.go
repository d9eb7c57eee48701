package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Regenerate MEMORY.md from the current topic files",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBridgeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer b.Destroy()

		if err := b.CurateIndex(); err != nil {
			return err
		}

		st := b.GetStatus()
		fmt.Printf("%s %s (%d lines)\n", color.GreenString("curated"), b.GetIndexPath(), st.IndexLines)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(curateCmd)
}
