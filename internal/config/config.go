// Package config loads the YAML settings shared by the desktop app and the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a file parses but fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Window    WindowConfig    `yaml:"window"`
	Preview   PreviewConfig   `yaml:"preview"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Output    OutputConfig    `yaml:"output"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// WindowConfig is the initial desktop window size.
type WindowConfig struct {
	Width  int `yaml:"width" validate:"min=320,max=7680"`
	Height int `yaml:"height" validate:"min=240,max=4320"`
}

// PreviewConfig bounds the displayed preview.
type PreviewConfig struct {
	MaxDimension int `yaml:"max_dimension" validate:"min=64,max=16384"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none stdout"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	PrometheusAddr string `yaml:"prometheus_addr" validate:"omitempty,hostname_port"`
}

// OutputConfig controls saving.
type OutputConfig struct {
	DefaultName string `yaml:"default_name" validate:"required"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
		},
		Preview: PreviewConfig{
			MaxDimension: 1024,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			PrometheusAddr: "localhost:9464",
		},
		Output: OutputConfig{
			DefaultName: "output.png",
		},
	}
}

// Load reads path over the defaults, applies NODEGRAPH_* environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	loadFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field against its declared constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Telemetry.MetricExporter == "prometheus" && c.Telemetry.PrometheusAddr == "" {
		return fmt.Errorf("%w: telemetry.prometheus_addr is required for the prometheus exporter", ErrInvalidConfig)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return c.Log.Level == "debug"
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("NODEGRAPH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("NODEGRAPH_LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("NODEGRAPH_PREVIEW_MAX_DIMENSION"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Preview.MaxDimension = i
		}
	}
	if v := os.Getenv("NODEGRAPH_TRACE_EXPORTER"); v != "" {
		cfg.Telemetry.TraceExporter = v
	}
	if v := os.Getenv("NODEGRAPH_METRIC_EXPORTER"); v != "" {
		cfg.Telemetry.MetricExporter = v
	}
	if v := os.Getenv("NODEGRAPH_PROMETHEUS_ADDR"); v != "" {
		cfg.Telemetry.PrometheusAddr = v
	}
}
