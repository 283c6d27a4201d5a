// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Forgecrew configuration
type Config struct {
	Project    ProjectConfig    `yaml:"project"`
	Model      ModelConfig      `yaml:"model"`
	Generation GenerationConfig `yaml:"generation"`
	Smoke      SmokeConfig      `yaml:"smoke"`
}

// ProjectConfig holds project-level configuration
type ProjectConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	OutputDir   string `yaml:"output_dir"`
}

// ModelConfig specifies model preferences and the generation server
type ModelConfig struct {
	Default string            `yaml:"default"`
	Agents  map[string]string `yaml:"agents"`
	BaseURL string            `yaml:"base_url"`
	Port    int               `yaml:"port"`
}

// GenerationConfig controls per-task and run-wide generation budgets.
// Timeouts are expressed in seconds.
type GenerationConfig struct {
	Temperature        float64 `yaml:"temperature"`
	MaxOutputChars     int     `yaml:"max_output_chars"`
	TaskTimeoutSeconds int     `yaml:"task_timeout_seconds"`
	MaxRetries         int     `yaml:"max_retries"`
	MaxIterations      int     `yaml:"max_iterations"`
	RunDeadlineSeconds int     `yaml:"run_deadline_seconds"`
}

// SmokeConfig controls the post-generation smoke test harness
type SmokeConfig struct {
	Python                string `yaml:"python"`
	BackendPort           int    `yaml:"backend_port"`
	ProbeRetries          int    `yaml:"probe_retries"`
	ProbeTimeoutSeconds   int    `yaml:"probe_timeout_seconds"`
	StartupTimeoutSeconds int    `yaml:"startup_timeout_seconds"`
}

// Defaults mirror the budgets the generator has always run with: five minutes
// per task, three retries, three refinement passes, forty minutes end to end.
const (
	defaultTemperature        = 0.1
	defaultMaxOutputChars     = 8192
	defaultTaskTimeoutSeconds = 300
	defaultMaxRetries         = 3
	defaultMaxIterations      = 3
	defaultRunDeadlineSeconds = 2400

	defaultPython                = "python3"
	defaultBackendPort           = 8001
	defaultProbeRetries          = 10
	defaultProbeTimeoutSeconds   = 1
	defaultStartupTimeoutSeconds = 15
)

// Load loads the configuration from .forgecrew/forgecrew.yaml
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFrom(filepath.Join(cwd, ".forgecrew", "forgecrew.yaml"))
}

// LoadFrom loads the configuration from an explicit path
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Project.OutputDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			c.Project.OutputDir = cwd
		}
	}
	if c.Model.BaseURL == "" && c.Model.Port > 0 {
		c.Model.BaseURL = fmt.Sprintf("http://localhost:%d", c.Model.Port)
	}
	if c.Generation.Temperature == 0 {
		c.Generation.Temperature = defaultTemperature
	}
	if c.Generation.MaxOutputChars <= 0 {
		c.Generation.MaxOutputChars = defaultMaxOutputChars
	}
	if c.Generation.TaskTimeoutSeconds <= 0 {
		c.Generation.TaskTimeoutSeconds = defaultTaskTimeoutSeconds
	}
	if c.Generation.MaxRetries <= 0 {
		c.Generation.MaxRetries = defaultMaxRetries
	}
	if c.Generation.MaxIterations <= 0 {
		c.Generation.MaxIterations = defaultMaxIterations
	}
	if c.Generation.RunDeadlineSeconds <= 0 {
		c.Generation.RunDeadlineSeconds = defaultRunDeadlineSeconds
	}
	if c.Smoke.Python == "" {
		c.Smoke.Python = defaultPython
	}
	if c.Smoke.BackendPort <= 0 {
		c.Smoke.BackendPort = defaultBackendPort
	}
	if c.Smoke.ProbeRetries <= 0 {
		c.Smoke.ProbeRetries = defaultProbeRetries
	}
	if c.Smoke.ProbeTimeoutSeconds <= 0 {
		c.Smoke.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
	if c.Smoke.StartupTimeoutSeconds <= 0 {
		c.Smoke.StartupTimeoutSeconds = defaultStartupTimeoutSeconds
	}
}

// TaskTimeout returns the per-task generation timeout.
func (g GenerationConfig) TaskTimeout() time.Duration {
	return time.Duration(g.TaskTimeoutSeconds) * time.Second
}

// RunDeadline returns the maximum wall-clock budget for a full pipeline run.
func (g GenerationConfig) RunDeadline() time.Duration {
	return time.Duration(g.RunDeadlineSeconds) * time.Second
}

// ProbeTimeout returns the per-attempt liveness probe timeout.
func (s SmokeConfig) ProbeTimeout() time.Duration {
	return time.Duration(s.ProbeTimeoutSeconds) * time.Second
}

// StartupTimeout returns how long the harness waits for the backend to boot.
func (s SmokeConfig) StartupTimeout() time.Duration {
	return time.Duration(s.StartupTimeoutSeconds) * time.Second
}

// ModelFor returns the model assigned to an agent role, falling back to the
// default model when no override exists.
func (c *Config) ModelFor(role string) string {
	if m, ok := c.Model.Agents[role]; ok && m != "" {
		return m
	}
	return c.Model.Default
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Project.Name == "" {
		return fmt.Errorf("project name is required")
	}

	if c.Project.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	if c.Model.Default == "" {
		return fmt.Errorf("default model is required")
	}

	if c.Model.BaseURL == "" {
		return fmt.Errorf("generation server base URL is required")
	}

	return nil
}
