package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/pdfblocks"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := loadConfig("")
	require.NoError(t, err)

	defaults := pdfblocks.DefaultConfig()
	assert.Equal(t, defaults.Thresholds, config.Thresholds)
	assert.Equal(t, defaults.MaxInputBytes, config.MaxInputBytes)
	assert.Equal(t, defaults.ImageWorkers, config.ImageWorkers)
	assert.True(t, config.ExtractImages)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfblocks.yaml")
	content := `image_workers: 2
strict_validation: true
thresholds:
  column_gap: 55
  h1_ratio: 1.8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, config.ImageWorkers)
	assert.True(t, config.StrictValidation)
	assert.Equal(t, 55.0, config.Thresholds.ColumnGap)
	assert.Equal(t, 1.8, config.Thresholds.H1Ratio)
	// Keys missing from the file keep their defaults
	assert.Equal(t, pdfblocks.DefaultThresholds().LineTolerance, config.Thresholds.LineTolerance)
	assert.Equal(t, pdfblocks.DefaultThresholds().MaxPathOps, config.Thresholds.MaxPathOps)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PDFBLOCKS_IMAGE_WORKERS", "9")
	t.Setenv("PDFBLOCKS_THRESHOLDS_COLUMN_GAP", "33")

	config, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9, config.ImageWorkers)
	assert.Equal(t, 33.0, config.Thresholds.ColumnGap)
	assert.Equal(t, pdfblocks.DefaultThresholds().SpanRatio, config.Thresholds.SpanRatio)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
