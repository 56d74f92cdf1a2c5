package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"morphoseg/pkg/connectivity"
)

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "morphoseg.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Processing.Connectivity = int(connectivity.C6)
	cfg.Processing.Direction = "erosion"
	cfg.Output.LogFile = "/tmp/morphoseg.log"
	require.NoError(t, SaveConfig(cfg, path))

	back, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processing:\n  computeDams: false\n  gradientRadius: 2\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Processing.ComputeDams)
	assert.Equal(t, 2, cfg.Processing.GradientRadius)
	assert.Equal(t, "disk", cfg.Processing.GradientShape)
	assert.Equal(t, 100, cfg.Output.LogMaxSizeMB)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.Connectivity = 5
	cfg.Processing.GradientShape = "hexagon"
	cfg.Processing.Direction = "sideways"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, connectivity.ErrUnknown)
	assert.Contains(t, err.Error(), "hexagon")
	assert.Contains(t, err.Error(), "sideways")
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("processing: [not, a, map]"), 0644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("processing:\n  numCores: -1\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "numCores")
}
