// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "askdata/cli/internal/errors"
	"askdata/cli/internal/xdg"
)

// Supported completion providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Providers lists every provider name accepted in configuration.
var Providers = []string{ProviderGroq, ProviderOpenAI, ProviderGemini}

var providerDefaults = map[string]LLMConfig{
	ProviderGroq: {
		Endpoint: "https://api.groq.com/openai/v1/chat/completions",
		Model:    "llama-3.3-70b-versatile",
	},
	ProviderOpenAI: {
		Endpoint: "https://api.openai.com/v1/chat/completions",
		Model:    "gpt-4o-mini",
	},
	ProviderGemini: {
		Model: "gemini-2.0-flash",
	},
}

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel string        `json:"log_level"`
	Profile  string        `json:"profile"`
	LLM      LLMConfig     `json:"llm"`
	Timeouts TimeoutConfig `json:"timeouts"`

	// APIKey is only ever populated from ASKDATA_API_KEY and never saved.
	APIKey string `json:"-"`
}

// LLMConfig selects the completion service.
type LLMConfig struct {
	Provider string `json:"provider"`
	Endpoint string `json:"endpoint,omitempty"`
	Model    string `json:"model,omitempty"`
}

// TimeoutConfig holds per-stage timeouts in seconds. Zero disables a timeout.
type TimeoutConfig struct {
	Generation  int `json:"generation"`
	Execution   int `json:"execution"`
	Explanation int `json:"explanation"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Profile:  "fitness",
		LLM:      LLMConfig{Provider: ProviderGroq},
		Timeouts: TimeoutConfig{Generation: 60, Execution: 30, Explanation: 60},
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults. Environment
// overrides are applied last.
func Load() (Config, error) {
	c, err := LoadFile()
	if err != nil {
		return c, err
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// LoadFile reads the config file over the defaults without environment
// overrides. It is the starting point for edits that are saved back.
func LoadFile() (Config, error) {
	c := Default()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, apperrors.Wrap(apperrors.KindConfig, "invalid "+p, err)
		}
	}
	return c, nil
}

// Keys lists the settings accepted by Set.
var Keys = []string{
	"provider", "endpoint", "model", "profile", "log_level",
	"timeouts.generation", "timeouts.execution", "timeouts.explanation",
}

// Set changes one setting by key and validates the result. Changing the
// provider clears the endpoint and model of the previous one.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	next := *c
	switch key {
	case "provider":
		v := strings.ToLower(value)
		if v != next.LLM.Provider {
			next.LLM = LLMConfig{Provider: v}
		}
	case "endpoint":
		next.LLM.Endpoint = value
	case "model":
		next.LLM.Model = value
	case "profile":
		next.Profile = value
	case "log_level":
		next.LogLevel = strings.ToLower(value)
	case "timeouts.generation", "timeouts.execution", "timeouts.explanation":
		n, err := strconv.Atoi(value)
		if err != nil {
			return apperrors.Wrap(apperrors.KindUsage, key+" must be a whole number of seconds", err)
		}
		switch key {
		case "timeouts.generation":
			next.Timeouts.Generation = n
		case "timeouts.execution":
			next.Timeouts.Execution = n
		default:
			next.Timeouts.Explanation = n
		}
	default:
		return apperrors.New(apperrors.KindUsage, fmt.Sprintf("unknown setting %q (one of %s)", key, strings.Join(Keys, ", ")))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ASKDATA_PROVIDER"); v != "" {
		if !strings.EqualFold(v, c.LLM.Provider) {
			// endpoint and model from the file belong to the old provider
			c.LLM = LLMConfig{}
		}
		c.LLM.Provider = v
	}
	if v := os.Getenv("ASKDATA_ENDPOINT"); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv("ASKDATA_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("ASKDATA_API_KEY"); v != "" {
		c.APIKey = strings.TrimSpace(v)
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
}

// Validate checks the provider name and timeouts.
func (c Config) Validate() error {
	if _, ok := providerDefaults[c.LLM.Provider]; !ok {
		return apperrors.New(apperrors.KindConfig, "unknown provider "+c.LLM.Provider+" (expected one of "+strings.Join(Providers, ", ")+")")
	}
	t := c.Timeouts
	if t.Generation < 0 || t.Execution < 0 || t.Explanation < 0 {
		return apperrors.New(apperrors.KindConfig, "timeouts must not be negative")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return apperrors.New(apperrors.KindConfig, "log_level must be one of debug, info, warn, error")
	}
	return nil
}

// Resolved fills the endpoint and model with the provider's defaults.
func (l LLMConfig) Resolved() LLMConfig {
	d := providerDefaults[l.Provider]
	if l.Endpoint == "" {
		l.Endpoint = d.Endpoint
	}
	if l.Model == "" {
		l.Model = d.Model
	}
	return l
}

// GenerationTimeout returns the code generation timeout.
func (t TimeoutConfig) GenerationTimeout() time.Duration { return seconds(t.Generation) }

// ExecutionTimeout returns the sandbox execution timeout.
func (t TimeoutConfig) ExecutionTimeout() time.Duration { return seconds(t.Execution) }

// ExplanationTimeout returns the explanation timeout.
func (t TimeoutConfig) ExplanationTimeout() time.Duration { return seconds(t.Explanation) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
