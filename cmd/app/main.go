// Node-Based Image Processor desktop application

package main

import (
	"context"
	"flag"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"github.com/SaanidhyaM/node-based-image-processor/internal/config"
	"github.com/SaanidhyaM/node-based-image-processor/internal/graph"
	"github.com/SaanidhyaM/node-based-image-processor/internal/gui"
	"github.com/SaanidhyaM/node-based-image-processor/internal/io"
	"github.com/SaanidhyaM/node-based-image-processor/internal/logging"
	"github.com/SaanidhyaM/node-based-image-processor/internal/telemetry"
)

const (
	AppName    = "Node-Based Image Processor"
	AppID      = "com.saanidhyam.node-based-image-processor"
	AppVersion = "1.0.0"
)

func main() {
	// Parse command line flags
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", "", "YAML config file")
	imagePath := flag.String("image", "", "Image to open on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *debugMode {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logger")
	}
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": cfg.Debug(),
	}).Info("Starting " + AppName)

	slogger := logging.NewSlog(logger)

	ctx := context.Background()
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "nodegraph-app",
		ServiceVersion: AppVersion,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		PrometheusAddr: cfg.Telemetry.PrometheusAddr,
		Logger:         slogger,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize telemetry")
	}

	loader := io.NewImageLoader(slogger)
	g := graph.New(loader, loader, slogger)

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, g, loader, cfg, slogger)
	if *imagePath != "" {
		if err := mainApp.OpenImage(*imagePath); err != nil {
			logger.WithError(err).Warn("Failed to open startup image")
		}
	}
	mainApp.ShowAndRun()

	g.Close()
	if err := shutdown(ctx); err != nil {
		logger.WithError(err).Warn("Telemetry shutdown failed")
	}
	logger.Info("Application shutting down gracefully")
	os.Exit(0)
}
