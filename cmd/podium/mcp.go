package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/orchestra-dev/podium/internal/logging"
	mcpAdapter "github.com/orchestra-dev/podium/pkg/adapters/mcp"
	"github.com/orchestra-dev/podium/pkg/config"
	"github.com/orchestra-dev/podium/pkg/loop"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the command hierarchy as an MCP Server over stdio.
This allows AI agents to inspect the forest, request runs and cancels,
and fire trigger events as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")
		outputDir, _ := cmd.Flags().GetString("output-dir")

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		// Logs go to stderr so stdout stays clean for JSON-RPC.
		logger := logging.New(level)
		log.SetOutput(os.Stderr)

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctrl, orch, err := buildController(cfg, logger, outputDir)
		if err != nil {
			return err
		}
		defer orch.Close()

		l := loop.New(loop.WithLogger(logger))
		l.Start()
		defer l.Stop()

		if err := ctrl.Attach(l); err != nil {
			return fmt.Errorf("attach: %w", err)
		}
		defer ctrl.Detach()

		logger.Info("starting MCP server (stdio)")
		return mcpAdapter.NewServer(ctrl).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("output-dir", "", "Directory for command output logs (default: system temp)")
}
