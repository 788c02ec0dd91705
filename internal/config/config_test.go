package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crab-xieyujin/foshuo/internal/pagination"
	"github.com/crab-xieyujin/foshuo/internal/reader"
)

func TestDefault(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	cfg := Default()
	assert.Equal(t, "/tmp/xdg-state/foshuo", cfg.StateDir)
	assert.Equal(t, "/tmp/xdg-state/foshuo/library.db", cfg.LibraryPath)
	assert.Equal(t, pagination.Medium, cfg.Reader.Size)
	assert.Equal(t, 80, cfg.Pagination.Lookback)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
state_dir = "/srv/foshuo"
log_level = "debug"

[reader]
size = "huge"
mode = "scroll"

[pagination]
lookback = 40
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/foshuo", cfg.StateDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, pagination.Huge, cfg.Reader.Size)
	assert.Equal(t, reader.ModeScroll, cfg.Reader.Mode)
	assert.Equal(t, 40, cfg.Pagination.Lookback)
	assert.Equal(t, pagination.DefaultBoundaries, cfg.Pagination.Boundaries)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"size":      "[reader]\nsize = \"gigantic\"\n",
		"log level": "log_level = \"loud\"\n",
		"lookback":  "[pagination]\nlookback = -1\n",
		"syntax":    "state_dir = \n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FOSHUO_STATE_DIR", "/env/state")
	t.Setenv("FOSHUO_LIBRARY", "/env/lib.db")
	t.Setenv("FOSHUO_LOG_LEVEL", "warn")
	t.Setenv("FOSHUO_LOOKBACK", "12")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/state", cfg.StateDir)
	assert.Equal(t, "/env/lib.db", cfg.LibraryPath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 12, cfg.Paginator().Lookback)

	t.Setenv("FOSHUO_LOOKBACK", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Reader.Size = pagination.Small
	cfg.Pagination.Lookback = 60
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPaginatorDefaultsBoundaries(t *testing.T) {
	cfg := Default()
	cfg.Pagination.Boundaries = ""
	p := cfg.Paginator()
	assert.Equal(t, pagination.DefaultBoundaries, p.Boundaries)
}
