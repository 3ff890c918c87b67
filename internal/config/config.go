// Package config loads the YAML configuration for the agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		APIKey      string  `yaml:"api_key"`
		APIKeyEnv   string  `yaml:"api_key_env"`
		Model       string  `yaml:"model"`
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_output_tokens"`
	} `yaml:"llm"`

	Workspace struct {
		Root string `yaml:"root"`
	} `yaml:"workspace"`

	Agent struct {
		MaxRounds     int  `yaml:"max_rounds"`     // review/regenerate rounds before giving up
		Fuzziness     int  `yaml:"fuzziness"`      // starting patch match tolerance (0 = exact)
		KeepArtifacts bool `yaml:"keep_artifacts"` // keep per-round program versions on disk
	} `yaml:"agent"`

	Sandbox struct {
		Interpreter    string `yaml:"interpreter"`
		Method         string `yaml:"method"` // auto, firejail, bubblewrap, subprocess
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"sandbox"`
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and resolves the workspace root to an absolute path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.LLM.APIKeyEnv != "" {
		if key := os.Getenv(cfg.LLM.APIKeyEnv); key != "" {
			cfg.LLM.APIKey = key
		}
	}

	if cfg.Workspace.Root != "" {
		absRoot, err := filepath.Abs(cfg.Workspace.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
		}
		cfg.Workspace.Root = absRoot
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with all defaults applied and no file read.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:8080/v1"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.Agent.MaxRounds == 0 {
		c.Agent.MaxRounds = 5
	}
	if c.Sandbox.Interpreter == "" {
		c.Sandbox.Interpreter = "python3"
	}
	if c.Sandbox.Method == "" {
		c.Sandbox.Method = "auto"
	}
	if c.Sandbox.TimeoutSeconds == 0 {
		c.Sandbox.TimeoutSeconds = 30
	}
}
