package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Project buffered and recent Store insights into the Memory Directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBridgeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer b.Destroy()

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("syncing"),
			progressbar.OptionSpinnerType(14),
		)
		_ = bar.RenderBlank()

		result, err := b.SyncToAutoMemory(context.Background())
		_ = bar.Finish()
		if err != nil {
			return err
		}

		fmt.Printf("%s %d entries across %d categories\n", color.GreenString("synced"), result.Synced, len(result.Categories))
		for _, e := range result.Errors {
			fmt.Println(color.YellowString("warning: "), e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
