package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ivanvanderbyl/pdfblocks"
)

// fileConfig mirrors the tunable parts of pdfblocks.Config in a config file.
type fileConfig struct {
	MaxInputBytes    int64                `mapstructure:"max_input_bytes"`
	ExtractImages    bool                 `mapstructure:"extract_images"`
	ImageWorkers     int                  `mapstructure:"image_workers"`
	RunGapFactor     float64              `mapstructure:"run_gap_factor"`
	StrictValidation bool                 `mapstructure:"strict_validation"`
	Thresholds       pdfblocks.Thresholds `mapstructure:"thresholds"`
}

// loadConfig reads converter settings from cfgFile (optional) and PDFBLOCKS_* environment
// variables on top of the library defaults.
func loadConfig(cfgFile string) (pdfblocks.Config, error) {
	defaults := pdfblocks.DefaultConfig()
	th := defaults.Thresholds

	v := viper.New()
	v.SetDefault("max_input_bytes", defaults.MaxInputBytes)
	v.SetDefault("extract_images", defaults.ExtractImages)
	v.SetDefault("image_workers", defaults.ImageWorkers)
	v.SetDefault("run_gap_factor", defaults.RunGapFactor)
	v.SetDefault("strict_validation", defaults.StrictValidation)
	v.SetDefault("thresholds.line_tolerance", th.LineTolerance)
	v.SetDefault("thresholds.column_gap", th.ColumnGap)
	v.SetDefault("thresholds.min_span_runs", th.MinSpanRuns)
	v.SetDefault("thresholds.span_ratio", th.SpanRatio)
	v.SetDefault("thresholds.h1_ratio", th.H1Ratio)
	v.SetDefault("thresholds.h2_ratio", th.H2Ratio)
	v.SetDefault("thresholds.h2_max_length", th.H2MaxLength)
	v.SetDefault("thresholds.sample_size", th.SampleSize)
	v.SetDefault("thresholds.flat_variance", th.FlatVariance)
	v.SetDefault("thresholds.max_path_ops", th.MaxPathOps)
	v.SetDefault("thresholds.raster_scale", th.RasterScale)

	// thresholds.column_gap is read from PDFBLOCKS_THRESHOLDS_COLUMN_GAP
	v.SetEnvPrefix("PDFBLOCKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return pdfblocks.Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return pdfblocks.Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg := defaults
	cfg.MaxInputBytes = fc.MaxInputBytes
	cfg.ExtractImages = fc.ExtractImages
	cfg.ImageWorkers = fc.ImageWorkers
	cfg.RunGapFactor = fc.RunGapFactor
	cfg.StrictValidation = fc.StrictValidation
	cfg.Thresholds = fc.Thresholds
	return cfg, nil
}
