// Package config provides Viper-based configuration management for trafficstats
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/davidvella/traffic/analyzer"
	"github.com/davidvella/traffic/report"
)

// EnvPrefix prefixes every environment override, e.g. TRAFFICSTATS_ANALYSIS_TOP_N.
const EnvPrefix = "TRAFFICSTATS"

// DefaultPath is analysed when neither arguments nor configuration name a file.
const DefaultPath = "./traffic_logs/traffic.logs"

var envKeyReplacer = strings.NewReplacer(".", "_")

// Config represents the complete trafficstats configuration
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Output   OutputConfig   `mapstructure:"output"`
}

// InputConfig names the log files to load.
type InputConfig struct {
	Paths []string `mapstructure:"paths"`
}

// AnalysisConfig contains query parameters
type AnalysisConfig struct {
	TopN       int `mapstructure:"top_n"`
	WindowSize int `mapstructure:"window_size"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
}

// Load reads configuration from file and environment variables. Values already
// set on v (flags bound with BindPFlag) take precedence over both.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".trafficstats")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/trafficstats")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file on the search path is OK, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Input:    InputConfig{Paths: []string{DefaultPath}},
		Analysis: AnalysisConfig{TopN: analyzer.DefaultTopN, WindowSize: analyzer.DefaultWindowSize},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
		Output:   OutputConfig{Format: "text", Color: "auto"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("input.paths", d.Input.Paths)

	v.SetDefault("analysis.top_n", d.Analysis.TopN)
	v.SetDefault("analysis.window_size", d.Analysis.WindowSize)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Analysis.TopN <= 0 {
		return fmt.Errorf("invalid analysis.top_n: %d (must be greater than 0)", c.Analysis.TopN)
	}
	if c.Analysis.WindowSize <= 0 {
		return fmt.Errorf("invalid analysis.window_size: %d (must be greater than 0)", c.Analysis.WindowSize)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be console or json)", c.Logging.Format)
	}

	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := report.ParseColorMode(c.Output.Color); err != nil {
		return err
	}

	return nil
}
