// Copyright (c) 2026 Forgecrew Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "forgecrew.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantErr     bool
		errContains string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid configuration file",
			content: `
project:
  name: "task-manager-generator"
  description: "Generates a task management web app"
  output_dir: "/tmp/generated"

model:
  default: "anthropic/claude-3-5-haiku"
  agents:
    "Frontend Developer": "anthropic/claude-sonnet-4-5"
  base_url: "http://localhost:4096"

generation:
  temperature: 0.1
  max_output_chars: 8192
  task_timeout_seconds: 300
  max_retries: 3
  max_iterations: 3
  run_deadline_seconds: 2400

smoke:
  python: "python3"
  backend_port: 8001
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "task-manager-generator", cfg.Project.Name)
				assert.Equal(t, "/tmp/generated", cfg.Project.OutputDir)
				assert.Equal(t, "anthropic/claude-3-5-haiku", cfg.Model.Default)
				assert.Equal(t, 5*time.Minute, cfg.Generation.TaskTimeout())
				assert.Equal(t, 40*time.Minute, cfg.Generation.RunDeadline())
				assert.Equal(t, 8001, cfg.Smoke.BackendPort)
			},
		},
		{
			name: "defaults applied when sections omitted",
			content: `
project:
  name: "minimal"
model:
  default: "anthropic/claude-3-5-haiku"
  port: 4096
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://localhost:4096", cfg.Model.BaseURL)
				assert.Equal(t, 0.1, cfg.Generation.Temperature)
				assert.Equal(t, 8192, cfg.Generation.MaxOutputChars)
				assert.Equal(t, 3, cfg.Generation.MaxRetries)
				assert.Equal(t, 40*time.Minute, cfg.Generation.RunDeadline())
				assert.Equal(t, "python3", cfg.Smoke.Python)
				assert.Equal(t, 10, cfg.Smoke.ProbeRetries)
				assert.Equal(t, time.Second, cfg.Smoke.ProbeTimeout())
				assert.NotEmpty(t, cfg.Project.OutputDir)
			},
		},
		{
			name:        "malformed yaml",
			content:     "project: [not a mapping",
			wantErr:     true,
			errContains: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Project: ProjectConfig{Name: "p", OutputDir: "/tmp/out"},
			Model:   ModelConfig{Default: "anthropic/claude-3-5-haiku", BaseURL: "http://localhost:4096"},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing project name", func(c *Config) { c.Project.Name = "" }, "project name is required"},
		{"missing output dir", func(c *Config) { c.Project.OutputDir = "" }, "output directory is required"},
		{"missing default model", func(c *Config) { c.Model.Default = "" }, "default model is required"},
		{"missing base URL", func(c *Config) { c.Model.BaseURL = "" }, "base URL is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}
}

func TestModelFor(t *testing.T) {
	cfg := &Config{
		Model: ModelConfig{
			Default: "anthropic/claude-3-5-haiku",
			Agents: map[string]string{
				"Frontend Developer": "anthropic/claude-sonnet-4-5",
			},
		},
	}

	assert.Equal(t, "anthropic/claude-sonnet-4-5", cfg.ModelFor("Frontend Developer"))
	assert.Equal(t, "anthropic/claude-3-5-haiku", cfg.ModelFor("QA Engineer"))
}
