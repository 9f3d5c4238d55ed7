package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "en", cfg.Sort.Locale)
	assert.Empty(t, cfg.DB.Path)
}

func TestLoadFromMergesFiles(t *testing.T) {
	t.Setenv("SEOBOARD_DB_PATH", "")
	t.Setenv("SEOBOARD_SORT_LOCALE", "")
	t.Setenv("SEOBOARD_AI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	dir := t.TempDir()
	global := filepath.Join(dir, "global", "config.yaml")
	project := filepath.Join(dir, "project", "config.yaml")
	writeFile(t, global, "db:\n  path: /data/global.db\nsort:\n  locale: fa\n")
	writeFile(t, project, "db:\n  path: /data/project.db\n")

	cfg, err := LoadFrom(global, project, filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/data/project.db", cfg.DB.Path)
	assert.Equal(t, "fa", cfg.Sort.Locale)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("SEOBOARD_DB_PATH", "/env/board.db")
	t.Setenv("SEOBOARD_AI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "from-gemini")

	cfg, err := LoadFrom()
	require.NoError(t, err)
	assert.Equal(t, "/env/board.db", cfg.DB.Path)
	assert.Equal(t, "from-gemini", cfg.AI.APIKey)

	t.Setenv("SEOBOARD_AI_API_KEY", "explicit")
	cfg, err = LoadFrom()
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.AI.APIKey)
}

func TestLoadFromRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "db: [unclosed\n")
	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".seoboard", "config.yaml")
	require.NoError(t, WriteDefault(path, false))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "locale: en")
	assert.NotContains(t, string(content), "api_key")

	assert.Error(t, WriteDefault(path, false))
	assert.NoError(t, WriteDefault(path, true))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().AI, AIConfig{Model: cfg.AI.Model, BaseURL: cfg.AI.BaseURL})
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, path, "SEOBOARD_TEST_VALUE=from-file\nSEOBOARD_TEST_KEEP=from-file\n")
	t.Setenv("SEOBOARD_TEST_KEEP", "from-env")
	t.Setenv("SEOBOARD_TEST_VALUE", "")
	os.Unsetenv("SEOBOARD_TEST_VALUE")

	loadDotEnv(path)
	assert.Equal(t, "from-file", os.Getenv("SEOBOARD_TEST_VALUE"))
	assert.Equal(t, "from-env", os.Getenv("SEOBOARD_TEST_KEEP"))

	loadDotEnv(filepath.Join(dir, "absent.env"))
}
