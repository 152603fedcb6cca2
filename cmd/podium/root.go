package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "podium",
	Short: "Podium is a frontend engine for command orchestration",
	Long: `Podium turns a command configuration into a live hierarchy: commands run
manually, on file changes, or chained after other commands, with their
status fanned out to every place they appear in the tree.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "podium.yaml", "Path to the command configuration file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}
