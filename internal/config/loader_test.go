package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", name), []byte(content), 0o644))
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", "app:\n  name: book-companion-api\n")
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "book-companion-api", cfg.App.Name)
	assert.Equal(t, 8123, cfg.Server.HTTP.Port)
	assert.Equal(t, 10, cfg.Library.CacheCapacity)
	assert.Equal(t, 8000, cfg.Chat.ChapterContextRunes)
	assert.Equal(t, 100, cfg.Chat.HistoryWindow)
	assert.Equal(t, 120*time.Second, cfg.Chat.RequestTimeout)
	assert.Equal(t, "ollama", cfg.LLM.DefaultProvider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.Providers["ollama"].BaseURL)
	assert.False(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadExpandsEnvPlaceholders(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", `
library:
  root: ${TEST_LIBRARY_ROOT:/srv/books}
server:
  http:
    port: ${TEST_HTTP_PORT:9000}
`)
	t.Chdir(dir)

	t.Setenv("TEST_HTTP_PORT", "7777")

	cfg, err := Load()
	require.NoError(t, err)

	// 未设置的变量使用默认值，已设置的变量取环境值
	assert.Equal(t, "/srv/books", cfg.Library.Root)
	assert.Equal(t, 7777, cfg.Server.HTTP.Port)
}

func TestLoadEnvFileOverridesBase(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", "library:\n  cache_capacity: 10\n")
	writeConfigFile(t, dir, "config.production.yaml", "library:\n  cache_capacity: 50\n")
	t.Chdir(dir)
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Library.CacheCapacity)
}

func TestLoadMissingBaseFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load()
	require.Error(t, err)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("EXPAND_SET", "value")

	assert.Equal(t, "value", expandEnv("${EXPAND_SET}"))
	assert.Equal(t, "value", expandEnv("${EXPAND_SET:fallback}"))
	assert.Equal(t, "fallback", expandEnv("${EXPAND_UNSET_XYZ:fallback}"))
	assert.Equal(t, "", expandEnv("${EXPAND_UNSET_XYZ:}"))
	// 无默认值且未定义时原样保留
	assert.Equal(t, "${EXPAND_UNSET_XYZ}", expandEnv("${EXPAND_UNSET_XYZ}"))
}
