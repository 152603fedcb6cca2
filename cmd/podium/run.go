package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/orchestra-dev/podium"
	"github.com/orchestra-dev/podium/internal/logging"
	"github.com/orchestra-dev/podium/internal/presentation/tui"
	"github.com/orchestra-dev/podium/pkg/adapters/memory"
	"github.com/orchestra-dev/podium/pkg/adapters/process"
	"github.com/orchestra-dev/podium/pkg/config"
	"github.com/orchestra-dev/podium/pkg/domain"
	"github.com/orchestra-dev/podium/pkg/loop"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the command hierarchy",
	Long: `Loads the configuration, starts file watchers, and keeps the hierarchy
live until interrupted. Command status is printed per occurrence as runs
start and finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner()
		}

		outputDir, _ := cmd.Flags().GetString("output-dir")
		ctrl, orch, err := buildController(cfg, logger, outputDir)
		if err != nil {
			return err
		}
		defer orch.Close()

		// One console view per forest occurrence, so duplicated commands
		// print once per place they appear.
		domain.WalkForest(ctrl.Forest(), func(node *domain.CommandNode, depth int) {
			ctrl.RegisterView(tui.NewConsoleView(node.Name(), os.Stdout))
		})

		for _, warning := range ctrl.Validation().Warnings {
			logger.Warn("configuration warning", "kind", warning.Kind, "detail", warning.Message)
		}

		l := loop.New(loop.WithLogger(logger))
		l.Start()
		defer l.Stop()

		if err := ctrl.Attach(l); err != nil {
			return fmt.Errorf("attach: %w", err)
		}
		defer ctrl.Detach()

		fmt.Println(ctrlSummary(ctrl))

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdown
		logger.Info("shutting down", "signal", sig.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("output-dir", "", "Directory for command output logs (default: system temp)")
}

// buildController assembles the engine and controller from configuration.
// Shared by run and serve.
func buildController(cfg config.Config, logger *slog.Logger, outputDir string, extra ...podium.Option) (*podium.Controller, *memory.Orchestrator, error) {
	execOpts := []process.Option{process.WithLogger(logger)}
	if outputDir != "" {
		execOpts = append(execOpts, process.WithOutputDir(outputDir))
	}
	executor := process.NewExecutor(execOpts...)
	orch := memory.New(cfg.Commands,
		memory.WithExecutor(executor),
		memory.WithLogger(logger),
	)

	opts := []podium.Option{
		podium.WithLogger(logger),
		podium.WithNotifier(tui.NewConsoleNotifier(os.Stderr)),
	}
	opts = append(opts, extra...)
	ctrl, err := podium.New(cfg, orch, opts...)
	if err != nil {
		orch.Close()
		return nil, nil, fmt.Errorf("build controller: %w", err)
	}
	return ctrl, orch, nil
}

func ctrlSummary(ctrl *podium.Controller) string {
	v := ctrl.Validation()
	return fmt.Sprintf("Loaded %d command(s), %d watcher(s), %d warning(s). Ctrl+C to stop.",
		v.CommandsLoaded, v.WatchersConfigured, len(v.Warnings))
}
