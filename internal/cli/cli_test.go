package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const memoryConfig = `
logging:
  level: error
storage:
  backend: memory
dataset:
  timezone: UTC
`

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func withMemoryConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(memoryConfig), 0o600))
	appHandle = nil
	t.Cleanup(func() { appHandle = nil })
	return path
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"search", "trades", "trade", "movers", "politician", "ticker",
		"follow", "unfollow", "watchlist", "settings", "onboarding",
		"account", "premium", "alerts", "export", "serve", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	appHandle = nil
	out := run(t, "version", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotEmpty(t, out)
	assert.Nil(t, appHandle)
}

func TestSettingsRoundTrip(t *testing.T) {
	cfg := withMemoryConfig(t)

	run(t, "--config", cfg, "settings", "set", "threshold", "75000")
	out := run(t, "--config", cfg, "settings")
	assert.Contains(t, out, "threshold:     $75,000")
	assert.Contains(t, out, "language:      en")
}

func TestFollowAndWatchlist(t *testing.T) {
	cfg := withMemoryConfig(t)

	out := run(t, "--config", cfg, "follow", "p-hale")
	assert.Contains(t, out, "Following Margaret Hale")

	out = run(t, "--config", cfg, "watchlist")
	assert.Contains(t, out, "Margaret Hale")
}
