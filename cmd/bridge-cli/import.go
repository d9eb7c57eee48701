package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import existing Memory Directory markdown into the Store",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBridgeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer b.Destroy()

		result, err := b.ImportFromAutoMemory(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("%s %d imported, %d skipped, %d files scanned\n",
			color.GreenString("import complete"), result.Imported, result.Skipped, len(result.Files))
		for _, e := range result.Errors {
			fmt.Println(color.YellowString("warning: "), e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
