package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orchestra-dev/podium"
	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/pkg/adapters/memory"
	"github.com/orchestra-dev/podium/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for consistency",
	Long: `Loads the configuration and reports trigger cycles, unknown parent
commands, and hotkey problems without running anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		if len(args) > 0 {
			cfgPath = args[0]
		}

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		orch := memory.New(cfg.Commands)
		defer orch.Close()

		ctrl, err := podium.New(cfg, orch, podium.WithLogger(logging.NewNop()))
		if err != nil {
			return err
		}

		v := ctrl.Validation()
		fmt.Printf("Commands: %d, watchers: %d\n", v.CommandsLoaded, v.WatchersConfigured)
		for _, warning := range v.Warnings {
			fmt.Printf("  warning: %s\n", warning)
		}
		if len(v.Warnings) > 0 {
			os.Exit(1)
		}
		fmt.Println("Configuration is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
