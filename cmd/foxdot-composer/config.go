package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the composer's YAML configuration. API keys can also come
// from the environment (GEMINI_API_KEY, GROQ_API_KEY), which takes
// precedence over the file.
type Config struct {
	// Backend selects the model backend: "gemini" or "groq".
	Backend string `yaml:"backend"`
	// Model overrides the backend's default model name.
	Model string `yaml:"model"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GroqAPIKey   string `yaml:"groq_api_key"`

	// BridgeURL is the websocket address of the FoxDot runtime bridge.
	// Empty means no sandbox: calls only generate code.
	BridgeURL string `yaml:"bridge_url"`
	// AutoExecute overrides whether generated code runs automatically.
	AutoExecute *bool `yaml:"auto_execute"`

	// SessionFile is loaded on start (if present) and written by /save.
	SessionFile string `yaml:"session_file"`
}

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultGroqModel   = "llama-3.3-70b-versatile"
)

func loadConfig(path string) (Config, error) {
	cfg := Config{Backend: "gemini"}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		cfg.GroqAPIKey = key
	}

	if cfg.Model == "" {
		switch cfg.Backend {
		case "groq":
			cfg.Model = defaultGroqModel
		default:
			cfg.Model = defaultGeminiModel
		}
	}

	return cfg, nil
}
