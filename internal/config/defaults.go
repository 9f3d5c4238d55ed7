package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Model:   "gemini-2.5-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},
		Log: LogConfig{
			Level: "info",
		},
		Sort: SortConfig{
			Locale: "en",
		},
	}
}

const defaultHeader = `# seoboard configuration
# Environment overrides use the SEOBOARD_ prefix, e.g. SEOBOARD_DB_PATH.
# The Gemini key is read from GEMINI_API_KEY (a .env file is honoured).

`

// WriteDefault writes the default configuration to path, creating its directory.
// An existing file is left alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	body, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, append([]byte(defaultHeader), body...), 0o644)
}
