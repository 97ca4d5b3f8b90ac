package pdfblocks

// Thresholds holds the empirical layout heuristics.
// All distances are in PDF layout units (1/72 inch).
type Thresholds struct {
	// LineTolerance is the maximum baseline difference between runs on the same line.
	LineTolerance float64 `mapstructure:"line_tolerance"`

	// ColumnGap is the horizontal gap that separates table columns. It is used both to flag
	// table-row candidates and to split candidate lines into cells.
	ColumnGap float64 `mapstructure:"column_gap"`

	// MinSpanRuns and SpanRatio flag lines with many runs spread across the page as table rows.
	MinSpanRuns int     `mapstructure:"min_span_runs"`
	SpanRatio   float64 `mapstructure:"span_ratio"`

	// H1Ratio and H2Ratio are font size ratios to the page mean.
	H1Ratio     float64 `mapstructure:"h1_ratio"`
	H2Ratio     float64 `mapstructure:"h2_ratio"`
	H2MaxLength int     `mapstructure:"h2_max_length"`

	// SampleSize bounds the validator's downsampled grid on each axis.
	SampleSize int `mapstructure:"sample_size"`
	// FlatVariance is the RGB variance below which an image is flagged as flat.
	FlatVariance float64 `mapstructure:"flat_variance"`

	// MaxPathOps is the vector path count above which a textless page is rasterised.
	MaxPathOps int `mapstructure:"max_path_ops"`
	// RasterScale is the upscaling factor for full-page rasterisation.
	RasterScale float64 `mapstructure:"raster_scale"`
}

// DefaultThresholds returns the standard heuristic values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LineTolerance: 2,
		ColumnGap:     80,
		MinSpanRuns:   3,
		SpanRatio:     0.4,
		H1Ratio:       1.6,
		H2Ratio:       1.3,
		H2MaxLength:   60,
		SampleSize:    100,
		FlatVariance:  1,
		MaxPathOps:    100,
		RasterScale:   2,
	}
}
