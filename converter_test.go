package pdfblocks_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/pdfblocks"
)

// setupPDFium initialises a pdfium instance for testing.
func setupPDFium(t *testing.T) pdfium.Pdfium {
	t.Helper()

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	instance, err := pool.GetInstance(time.Second * 30)
	require.NoError(t, err)

	return instance
}

func quietConfig() pdfblocks.Config {
	config := pdfblocks.DefaultConfig()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	config.Logger = logger
	return config
}

func TestDefaultConfig(t *testing.T) {
	config := pdfblocks.DefaultConfig()

	assert.Equal(t, int64(50<<20), config.MaxInputBytes)
	assert.True(t, config.ExtractImages)
	assert.Equal(t, 4, config.ImageWorkers)
	assert.Equal(t, pdfblocks.DefaultThresholds(), config.Thresholds)
	assert.Equal(t, 2.0, config.Thresholds.RasterScale)
	assert.Equal(t, 80.0, config.Thresholds.ColumnGap)
}

func TestNewConverterWithConfig_FillsDefaults(t *testing.T) {
	config := pdfblocks.DefaultConfig()
	config.ImageWorkers = 0

	converter := pdfblocks.NewConverterWithConfig(nil, config)

	assert.Equal(t, 1, converter.Config().ImageWorkers)
	assert.NotNil(t, converter.Config().Logger)
}

func TestConverter_RejectsOversizedInput(t *testing.T) {
	config := quietConfig()
	config.MaxInputBytes = 16
	converter := pdfblocks.NewConverterWithConfig(nil, config)
	oversized := bytes.Repeat([]byte("%PDF-1.7 "), 4)

	_, err := converter.ConvertBytes(oversized)
	assert.True(t, errors.Is(err, pdfblocks.ErrInputTooLarge), "got %v", err)

	_, err = converter.ConvertReader(bytes.NewReader(oversized))
	assert.True(t, errors.Is(err, pdfblocks.ErrInputTooLarge), "got %v", err)

	path := filepath.Join(t.TempDir(), "large.pdf")
	require.NoError(t, os.WriteFile(path, oversized, 0644))

	_, err = converter.ConvertFile(path)
	assert.True(t, errors.Is(err, pdfblocks.ErrInputTooLarge), "got %v", err)

	_, err = converter.ConvertPageRange(path, 0, 0)
	assert.True(t, errors.Is(err, pdfblocks.ErrInputTooLarge), "got %v", err)
}

func TestConverter_RejectsEmptyInput(t *testing.T) {
	converter := pdfblocks.NewConverterWithConfig(nil, quietConfig())

	_, err := converter.ConvertBytes(nil)
	assert.True(t, errors.Is(err, pdfblocks.ErrCorruptDocument), "got %v", err)
}

func TestConverter_StrictValidationRejectsGarbage(t *testing.T) {
	config := quietConfig()
	config.StrictValidation = true
	converter := pdfblocks.NewConverterWithConfig(nil, config)

	_, err := converter.ConvertBytes([]byte("this is not a pdf document"))
	assert.True(t, errors.Is(err, pdfblocks.ErrCorruptDocument), "got %v", err)
}

func TestConverter_MissingFile(t *testing.T) {
	converter := pdfblocks.NewConverterWithConfig(nil, quietConfig())

	_, err := converter.ConvertFile(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	_, err = converter.GetDocumentInfo(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestConverter_MalformedPDF(t *testing.T) {
	instance := setupPDFium(t)
	converter := pdfblocks.NewConverterWithConfig(instance, quietConfig())

	_, err := converter.ConvertBytes([]byte("%PDF-1.4\nthis file ends abruptly"))
	assert.True(t, errors.Is(err, pdfblocks.ErrCorruptDocument), "got %v", err)
}

func TestConverter_SamplePDF(t *testing.T) {
	pdfPath := filepath.Join("testdata", "sample.pdf")
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		t.Skip("Test PDF not found, skipping test")
	}

	instance := setupPDFium(t)
	config := quietConfig()
	config.EnableMetricsLogging = true
	converter := pdfblocks.NewConverterWithConfig(instance, config)

	info, err := converter.GetDocumentInfo(pdfPath)
	require.NoError(t, err)
	require.Greater(t, info.PageCount, 0)

	doc, metrics, err := converter.ConvertFileWithMetrics(pdfPath)
	require.NoError(t, err)
	require.NotEmpty(t, doc.Blocks)

	assert.Len(t, doc.Pages, info.PageCount)
	assert.Equal(t, info.PageCount, metrics.Statistics.TotalPages)
	assert.Greater(t, metrics.TotalTime, time.Duration(0))

	html, err := doc.ToHTML()
	require.NoError(t, err)
	assert.NotEmpty(t, html)

	md, err := doc.ToMarkdown()
	require.NoError(t, err)
	assert.NotEmpty(t, md)

	first, err := converter.ConvertPageRange(pdfPath, 0, 0)
	require.NoError(t, err)
	assert.Len(t, first.Pages, 1)
}
