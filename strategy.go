package pdfblocks

// Strategy is the per-page reconstruction mode.
type Strategy int

const (
	// Structured keeps the page's text blocks and any validated embedded images.
	Structured Strategy = iota
	// FullPageRaster replaces the page with a single rendered image.
	FullPageRaster
)

func (s Strategy) String() string {
	switch s {
	case Structured:
		return "structured"
	case FullPageRaster:
		return "full-page-raster"
	}
	return "unknown"
}

// SelectStrategy decides how a page is reconstructed. Rules are evaluated in order and
// the first match wins.
func SelectStrategy(signals PageSignals, th Thresholds) Strategy {
	switch {
	case signals.TextBlocks == 0:
		// scanned or image-only page
		return FullPageRaster
	case signals.ImageOps > 0 && signals.ExtractedImages == 0:
		// graphics present but not recoverable as discrete images
		return FullPageRaster
	case signals.FormOps > 0:
		return FullPageRaster
	case signals.PathOps > th.MaxPathOps && signals.TextBlocks == 0:
		return FullPageRaster
	}
	return Structured
}
