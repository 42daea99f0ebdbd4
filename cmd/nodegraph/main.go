package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/SaanidhyaM/node-based-image-processor/internal/config"
	"github.com/SaanidhyaM/node-based-image-processor/internal/logging"
	"github.com/SaanidhyaM/node-based-image-processor/internal/telemetry"
)

const version = "1.0.0"

// env holds what the root command sets up for its subcommands.
var env struct {
	cfg      config.Config
	log      *logrus.Logger
	slog     *slog.Logger
	shutdown func(context.Context) error
}

var rootCmd = &cobra.Command{
	Use:               "nodegraph",
	Short:             "Apply a chain of image transform nodes from the command line",
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if env.shutdown == nil {
			return nil
		}
		return env.shutdown(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	// stdout carries command output
	logger.SetOutput(os.Stderr)

	slogger := logging.NewSlog(logger)
	shutdown, err := telemetry.Init(cmd.Context(), telemetry.Config{
		ServiceName:    "nodegraph",
		ServiceVersion: version,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		PrometheusAddr: cfg.Telemetry.PrometheusAddr,
		Writer:         os.Stderr,
		Logger:         slogger,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	env.cfg = cfg
	env.log = logger
	env.slog = slogger
	env.shutdown = shutdown
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
