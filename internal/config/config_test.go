package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenecore.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[network]
bind_address = "0.0.0.0:9000"
tick_rate = "33ms"

[editor]
history_capacity = 20
autosave_interval_ticks = 600
fixtures = ["editor_camera"]

[scripting]
budget = "2ms"

[logging]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Network.BindAddress)
	assert.Equal(t, 33*time.Millisecond, cfg.Network.TickRate)
	assert.Equal(t, 20, cfg.Editor.HistoryCapacity)
	assert.Equal(t, 600, cfg.Editor.AutosaveIntervalTicks)
	assert.Equal(t, []string{"editor_camera"}, cfg.Editor.Fixtures)
	assert.Equal(t, 2*time.Millisecond, cfg.Scripting.Budget)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Untouched sections keep their defaults.
	assert.Equal(t, 100*time.Millisecond, cfg.Editor.HistoryEventInterval)
	assert.Equal(t, "scripts/lib", cfg.Scripting.LibDir)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "[editor]\nhistory_capacity = 0\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[database]\nenabled = true\ndsn = \"\"\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "not toml ==="))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("SCENECORE_CONFIG", "")
	assert.Equal(t, DefaultPath, Path())
	t.Setenv("SCENECORE_CONFIG", "/etc/scenecore.toml")
	assert.Equal(t, "/etc/scenecore.toml", Path())
}
