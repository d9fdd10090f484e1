// Package config loads estimator settings from an optional HCL file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Methods accepted by the estimator block. "compare" runs both estimators.
const (
	MethodTree    = "mcts"
	MethodDirect  = "direct"
	MethodCompare = "compare"
)

// Config represents the complete configuration
type Config struct {
	LogLevel  string           `hcl:"log_level,optional"`
	Estimator *EstimatorConfig `hcl:"estimator,block"`
}

// EstimatorConfig controls how win rates are estimated.
type EstimatorConfig struct {
	Simulations *int   `hcl:"simulations,optional"`
	Seed        *int64 `hcl:"seed,optional"`
	Method      string `hcl:"method,optional"`
	Workers     int    `hcl:"workers,optional"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	simulations := 1000
	return &Config{
		LogLevel: "info",
		Estimator: &EstimatorConfig{
			Simulations: &simulations,
			Method:      MethodTree,
			Workers:     1,
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and fills in defaults for anything left unset.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.Estimator == nil {
		c.Estimator = defaults.Estimator
		return
	}
	if c.Estimator.Simulations == nil {
		c.Estimator.Simulations = defaults.Estimator.Simulations
	}
	if c.Estimator.Method == "" {
		c.Estimator.Method = defaults.Estimator.Method
	}
	if c.Estimator.Workers == 0 {
		c.Estimator.Workers = defaults.Estimator.Workers
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}

	est := c.Estimator
	if est == nil {
		return fmt.Errorf("%w: missing estimator block", ErrInvalidConfig)
	}
	if est.Simulations != nil && *est.Simulations < 0 {
		return fmt.Errorf("%w: simulations must not be negative, got %d", ErrInvalidConfig, *est.Simulations)
	}
	if est.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, est.Workers)
	}
	switch est.Method {
	case MethodTree, MethodDirect, MethodCompare:
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, est.Method)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// SimulationCount returns the configured number of simulations.
func (c *Config) SimulationCount() int {
	if c.Estimator == nil || c.Estimator.Simulations == nil {
		return *Default().Estimator.Simulations
	}
	return *c.Estimator.Simulations
}
