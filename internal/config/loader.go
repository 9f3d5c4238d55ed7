package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	dirName    = ".seoboard"
	fileName   = "config.yaml"
	envPrefix  = "SEOBOARD"
	geminiKey  = "GEMINI_API_KEY"
	dotEnvFile = ".env"
)

// Load builds the effective configuration: defaults, then the global file,
// then the project file, then environment variables.
func Load() (*Config, error) {
	loadDotEnv(dotEnvFile)
	return LoadFrom(GlobalConfigPath(), ProjectConfigPath())
}

// LoadFrom is Load with explicit file locations. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	cfg := DefaultConfig()
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := loadFile(p, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	set := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	set("db.path", &cfg.DB.Path)
	set("ai.api_key", &cfg.AI.APIKey)
	set("ai.model", &cfg.AI.Model)
	set("ai.base_url", &cfg.AI.BaseURL)
	set("log.level", &cfg.Log.Level)
	set("log.file", &cfg.Log.File)
	set("sort.locale", &cfg.Sort.Locale)

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv(geminiKey)
	}
}

// loadDotEnv reads KEY=value pairs into the process environment without
// overriding variables that are already set.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, dirName, fileName)
}

// ProjectConfigPath returns the path to the project config file
func ProjectConfigPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, dirName, fileName)
}
