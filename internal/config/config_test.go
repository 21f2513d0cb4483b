package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("VISTORIA_DETECTOR", "")
	t.Setenv("VISTORIA_OUTPUT_DIR", "")
	t.Setenv("VISTORIA_MAX_WORKERS", "")
	t.Setenv("VISTORIA_THRESHOLDS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "gcv", cfg.Detector)
	require.Equal(t, "inspections", cfg.OutputDir)
	require.Equal(t, 4, cfg.MaxWorkers)
	require.Empty(t, cfg.DatabaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vistoria")
	t.Setenv("VISTORIA_DETECTOR", "fake")
	t.Setenv("VISTORIA_MAX_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://localhost/vistoria", cfg.DatabaseURL)
	require.Equal(t, "fake", cfg.Detector)
	require.Equal(t, 8, cfg.MaxWorkers)
}

func TestLoadInvalidWorkerCount(t *testing.T) {
	t.Setenv("VISTORIA_MAX_WORKERS", "many")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "VISTORIA_MAX_WORKERS")
}

func TestThresholdsDefault(t *testing.T) {
	cfg := &Config{}
	thresholds, err := cfg.Thresholds()
	require.NoError(t, err)
	require.Equal(t, 0.75, thresholds.Approval)
}

func TestThresholdsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("approval_threshold: 0.9\n"), 0644))

	cfg := &Config{ThresholdsPath: path}
	thresholds, err := cfg.Thresholds()
	require.NoError(t, err)
	require.Equal(t, 0.9, thresholds.Approval)
}
