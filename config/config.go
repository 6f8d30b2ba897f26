// ABOUTME: YAML configuration file loading with environment variable overrides.
// ABOUTME: Precedence is flags over environment over file over built-in defaults; flag merging happens in the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the on-disk configuration. Every field has a workable default
// so a missing config file is never an error.
type Config struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	PromptStyle string `yaml:"prompt_style"`

	// FrameInterval is the seconds between extracted video frames.
	FrameInterval int `yaml:"frame_interval"`

	Ollama struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"ollama"`

	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`

	Anthropic struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"anthropic"`

	// PromptsFile optionally points at a YAML file of prompt style overrides.
	PromptsFile string `yaml:"prompts_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Provider:      "ollama",
		PromptStyle:   "detailed",
		FrameInterval: 15,
	}
	return cfg
}

// Load reads a YAML config file and applies environment overrides on top of
// defaults. An empty path checks the conventional locations; a missing file
// yields defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = defaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// defaultPath returns the conventional config location, or "" when no home
// directory is resolvable.
func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.config/mediascribe/config.yaml"
}

// applyEnv overlays MEDIASCRIBE_* environment variables onto the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("MEDIASCRIBE_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("MEDIASCRIBE_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("MEDIASCRIBE_PROMPT_STYLE"); v != "" {
		c.PromptStyle = v
	}
	if v := os.Getenv("MEDIASCRIBE_FRAME_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.FrameInterval = n
		}
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.Ollama.BaseURL = v
	}
}
