package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/wsgen/internal/app"
	"github.com/vk/wsgen/internal/cli"
)

func TestNewConfig(t *testing.T) {
	t.Run("workspace dir is required", func(t *testing.T) {
		_, err := app.NewConfig(&cli.Options{}, "", "/tmp", "")
		assert.Error(t, err)
	})

	t.Run("defaults without a dotfile", func(t *testing.T) {
		cfg, err := app.NewConfig(&cli.Options{}, t.TempDir(), "/tmp", "")
		require.NoError(t, err)
		assert.Equal(t, app.DefaultTool, cfg.Tool)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.False(t, cfg.Quiet)
	})

	t.Run("environment tool beats the default", func(t *testing.T) {
		cfg, err := app.NewConfig(&cli.Options{}, t.TempDir(), "/tmp", "cargo")
		require.NoError(t, err)
		assert.Equal(t, "cargo", cfg.Tool)
	})

	t.Run("dotfile supplies defaults", func(t *testing.T) {
		root := t.TempDir()
		dotfile := "tool: buck\nquiet: true\nlog_level: debug\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, app.DotfileName), []byte(dotfile), 0o644))

		cfg, err := app.NewConfig(&cli.Options{}, root, "/tmp", "cargo")
		require.NoError(t, err)
		assert.Equal(t, "buck", cfg.Tool, "dotfile beats the environment")
		assert.True(t, cfg.Quiet)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat, "unset dotfile fields fall back")
	})

	t.Run("flags beat the dotfile", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, app.DotfileName), []byte("tool: buck\n"), 0o644))

		cfg, err := app.NewConfig(&cli.Options{Tool: "forge", LogLevel: "warn"}, root, "/tmp", "")
		require.NoError(t, err)
		assert.Equal(t, "forge", cfg.Tool)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("malformed dotfile is rejected", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, app.DotfileName), []byte("tool: [broken\n"), 0o644))

		_, err := app.NewConfig(&cli.Options{}, root, "/tmp", "")
		assert.ErrorContains(t, err, app.DotfileName)
	})
}
