package pdfblocks

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// pageResult is the outcome of reconstructing a single page.
type pageResult struct {
	blocks  []Block
	summary PageSummary
	failure *PageFailure
}

// assemble processes pages startPage..endPage in order. A failing page is logged and
// recorded in Document.Failures; it never stops the remaining pages. Negative bounds
// select the whole document.
func (c *Converter) assemble(src Source, startPage, endPage int) (*Document, ProcessingMetrics, error) {
	startTime := time.Now()
	logger := c.config.Logger

	pageCount, err := src.PageCount()
	if err != nil {
		return nil, ProcessingMetrics{}, errors.Wrap(ErrCorruptDocument, err.Error())
	}

	if startPage < 0 {
		startPage = 0
	}
	if endPage < 0 || endPage >= pageCount {
		endPage = pageCount - 1
	}
	if pageCount > 0 && startPage > endPage {
		return nil, ProcessingMetrics{}, errors.New("invalid page range: start page must be <= end page")
	}

	document := &Document{}
	var pageMetrics []PageMetrics

	for i := startPage; i <= endPage; i++ {
		pageStart := time.Now()
		result := c.processPage(src, i)
		duration := time.Since(pageStart)

		document.Blocks = append(document.Blocks, result.blocks...)
		document.Pages = append(document.Pages, result.summary)
		if result.failure != nil {
			document.Failures = append(document.Failures, *result.failure)
			logger.WithFields(logrus.Fields{
				"page":  result.failure.Page,
				"stage": result.failure.Stage,
			}).WithError(result.failure.Err).Warn("page contributed no blocks")
		}

		pageMetrics = append(pageMetrics, PageMetrics{
			PageNumber: i + 1,
			Duration:   duration,
			Strategy:   result.summary.Strategy,
			Blocks:     len(result.blocks),
			Failed:     result.failure != nil,
		})
	}

	metrics := ProcessingMetrics{
		TotalTime:       time.Since(startTime),
		PageExtractions: pageMetrics,
		Statistics:      calculateDocumentStatistics(document),
	}
	if c.config.EnableMetricsLogging {
		logProcessingMetrics(logger, metrics)
	}

	if len(document.Blocks) == 0 {
		return document, metrics, errors.Wrapf(ErrNoContent, "%d pages processed, %d failed", len(document.Pages), len(document.Failures))
	}

	return document, metrics, nil
}

// processPage reconstructs one page. Panics are converted into a page failure.
func (c *Converter) processPage(src Source, index int) (result pageResult) {
	pageNumber := index + 1
	result.summary = PageSummary{Number: pageNumber}

	defer func() {
		if r := recover(); r != nil {
			result.blocks = nil
			result.summary.Blocks = 0
			result.failure = &PageFailure{Page: pageNumber, Stage: "panic", Err: errors.Errorf("%v", r)}
		}
	}()

	th := c.config.Thresholds
	logger := c.config.Logger.WithField("page", pageNumber)

	runs, size, err := src.PageText(index)
	if err != nil {
		result.failure = &PageFailure{Page: pageNumber, Stage: "text", Err: err}
		return result
	}
	result.summary.Width = size.Width
	result.summary.Height = size.Height

	textBlocks := ClusterPage(runs, size.Width, th)

	ops, err := src.Operators(index)
	if err != nil {
		// Non-fatal: continue without operator counts
		logger.WithError(err).Debug("failed to count page objects")
		ops = OperatorCounts{}
	}

	// With extraction disabled embedded images are ignored rather than forcing a raster fallback
	imageOps := ops.Image
	if !c.config.ExtractImages {
		imageOps = 0
	}

	var imageBlocks []Block
	if imageOps > 0 {
		raws, err := src.PageImages(index)
		if err != nil {
			logger.WithError(err).Debug("failed to extract page images")
		}
		imageBlocks = c.decodeImages(logger, pageNumber, raws)
	}

	signals := PageSignals{
		TextBlocks:      len(textBlocks),
		ImageOps:        imageOps,
		ExtractedImages: len(imageBlocks),
		FormOps:         ops.Form,
		PathOps:         ops.Path,
	}
	result.summary.Strategy = SelectStrategy(signals, th)

	switch result.summary.Strategy {
	case FullPageRaster:
		block, err := c.rasterizePage(src, index, th.RasterScale)
		if err != nil {
			result.failure = &PageFailure{Page: pageNumber, Stage: "raster", Err: err}
			return result
		}
		result.blocks = []Block{block}
	default:
		result.blocks = append(textBlocks, imageBlocks...)
	}

	result.summary.Blocks = len(result.blocks)
	return result
}

// rasterizePage renders the full page into a single image block.
func (c *Converter) rasterizePage(src Rasterizer, index int, scale float64) (Block, error) {
	img, err := src.RenderPage(index, scale)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render page")
	}

	raster, err := rasterFromImage(img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert rendered page")
	}
	raster.Valid = true

	return Image{Raster: raster, Caption: fmt.Sprintf("Page %d", index+1)}, nil
}

// decodeImages decodes and validates a page's rasters concurrently, keeping extraction
// order. Images that fail to decode or are fully transparent are dropped.
func (c *Converter) decodeImages(logger logrus.FieldLogger, pageNumber int, raws []RawImage) []Block {
	if len(raws) == 0 {
		return nil
	}

	th := c.config.Thresholds
	decoded := make([]Block, len(raws))

	var g errgroup.Group
	g.SetLimit(c.config.ImageWorkers)
	for i, raw := range raws {
		g.Go(func() error {
			imageLogger := logger.WithField("image", i+1)
			defer func() {
				if r := recover(); r != nil {
					imageLogger.Warnf("image decode panicked: %v", r)
				}
			}()

			raster, err := DecodeImage(raw)
			if err != nil {
				imageLogger.WithError(err).Debug("skipping image")
				return nil
			}

			validation := ValidateImage(raster, th)
			if !validation.Accepted {
				imageLogger.WithError(ErrTransparentImage).Debug("skipping image")
				return nil
			}
			if validation.Flat {
				imageLogger.WithField("variance", validation.Variance).Debug("image has little colour variance")
			}

			decoded[i] = Image{
				Raster:  raster,
				Caption: fmt.Sprintf("Image %d on page %d", i+1, pageNumber),
			}
			return nil
		})
	}
	_ = g.Wait()

	blocks := make([]Block, 0, len(decoded))
	for _, block := range decoded {
		if block != nil {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
