package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/orchestra-dev/podium"
	"github.com/orchestra-dev/podium/internal/logging"
	httpAdapter "github.com/orchestra-dev/podium/pkg/adapters/http"
	"github.com/orchestra-dev/podium/pkg/config"
	"github.com/orchestra-dev/podium/pkg/loop"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hierarchy with an HTTP status API",
	Long: `Like run, but additionally exposes the command forest, run history,
diagnostics, and prometheus metrics over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")
		port, _ := cmd.Flags().GetString("port")
		outputDir, _ := cmd.Flags().GetString("output-dir")

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())

		ctrl, orch, err := buildController(cfg, logger, outputDir,
			podium.WithMetricsRegistry(reg))
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

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpAdapter.NewHandler(ctrl, logger, reg),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("status API listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("output-dir", "", "Directory for command output logs (default: system temp)")
}
