package pdfblocks

import (
	"io"
	"os"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMaxInputBytes is the default document size ceiling (50 MiB).
const DefaultMaxInputBytes = 50 << 20

// ProcessingMetrics contains timing and statistics for a conversion.
type ProcessingMetrics struct {
	TotalTime       time.Duration
	DocumentOpen    time.Duration
	PageExtractions []PageMetrics
	Statistics      DocumentStatistics
}

// PageMetrics contains timing for a single page.
type PageMetrics struct {
	PageNumber int
	Duration   time.Duration
	Strategy   Strategy
	Blocks     int
	Failed     bool
}

// DocumentStatistics contains document-level statistics.
type DocumentStatistics struct {
	TotalPages      int
	RasterPages     int
	FailedPages     int
	TotalParagraphs int
	TotalHeadings   int
	TotalListItems  int
	TotalTables     int
	TotalImages     int
	TotalCharacters int
}

// Config controls document reconstruction.
type Config struct {
	// Thresholds holds the layout heuristics (default: DefaultThresholds()).
	Thresholds Thresholds

	// MaxInputBytes rejects larger documents before parsing. Zero disables the check (default: 50 MiB).
	MaxInputBytes int64

	// ExtractImages enables embedded image extraction on structured pages (default: true).
	ExtractImages bool

	// ImageWorkers bounds concurrent image decoding within one page (default: 4).
	ImageWorkers int

	// RunGapFactor splits characters on one baseline into separate runs when the gap
	// exceeds this multiple of the font size (default: 1.0).
	RunGapFactor float64

	// StrictValidation treats structural preflight errors as corrupt input instead of
	// leaving the decision to pdfium (default: false).
	StrictValidation bool

	// EnableMetricsLogging enables processing time and statistics logging (default: false).
	EnableMetricsLogging bool

	// Logger receives page failures and diagnostics (default: logrus standard logger).
	Logger logrus.FieldLogger
}

// DefaultConfig returns the default converter configuration.
func DefaultConfig() Config {
	return Config{
		Thresholds:    DefaultThresholds(),
		MaxInputBytes: DefaultMaxInputBytes,
		ExtractImages: true,
		ImageWorkers:  4,
		RunGapFactor:  1.0,
	}
}

// Converter reconstructs PDFs into block sequences using pdfium.
type Converter struct {
	instance pdfium.Pdfium
	config   Config
}

// NewConverter creates a new converter with default configuration.
func NewConverter(instance pdfium.Pdfium) *Converter {
	return NewConverterWithConfig(instance, DefaultConfig())
}

// NewConverterWithConfig creates a new converter with custom configuration.
// The instance may be nil when only ConvertSource is used.
func NewConverterWithConfig(instance pdfium.Pdfium, config Config) *Converter {
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.ImageWorkers <= 0 {
		config.ImageWorkers = 1
	}
	return &Converter{
		instance: instance,
		config:   config,
	}
}

// Config returns the converter's configuration.
func (c *Converter) Config() Config {
	return c.config
}

// ConvertFile converts a PDF file.
func (c *Converter) ConvertFile(filePath string) (*Document, error) {
	doc, _, err := c.ConvertFileWithMetrics(filePath)
	return doc, err
}

// ConvertFileWithMetrics converts a PDF file and returns processing metrics.
func (c *Converter) ConvertFileWithMetrics(filePath string) (*Document, ProcessingMetrics, error) {
	data, err := c.readFile(filePath)
	if err != nil {
		return nil, ProcessingMetrics{}, err
	}
	return c.convert(data, -1, -1)
}

// ConvertBytes converts PDF bytes.
func (c *Converter) ConvertBytes(pdfBytes []byte) (*Document, error) {
	doc, _, err := c.convert(pdfBytes, -1, -1)
	return doc, err
}

// ConvertReader converts a PDF from an io.ReadSeeker.
func (c *Converter) ConvertReader(reader io.ReadSeeker) (*Document, error) {
	size, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrap(err, "failed to determine input size")
	}
	if err := c.checkSize(size); err != nil {
		return nil, err
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "failed to rewind input")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read input")
	}
	return c.ConvertBytes(data)
}

// ConvertPageRange converts pages startPage..endPage (0-indexed, inclusive).
// Negative bounds select the first and last page respectively.
func (c *Converter) ConvertPageRange(filePath string, startPage, endPage int) (*Document, error) {
	data, err := c.readFile(filePath)
	if err != nil {
		return nil, err
	}
	if startPage < 0 {
		startPage = 0
	}
	doc, _, err := c.convert(data, startPage, endPage)
	return doc, err
}

// GetDocumentInfo returns basic information about a PDF without converting it.
func (c *Converter) GetDocumentInfo(filePath string) (*DocumentInfo, error) {
	data, err := c.readFile(filePath)
	if err != nil {
		return nil, err
	}

	doc, err := c.open(data)
	if err != nil {
		return nil, err
	}
	defer c.close(doc)

	pageCount, err := c.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	return &DocumentInfo{
		PageCount: pageCount.PageCount,
		Size:      int64(len(data)),
	}, nil
}

// DocumentInfo contains basic information about a PDF document.
type DocumentInfo struct {
	PageCount int
	Size      int64
}

// ConvertSource reconstructs every page offered by src.
func (c *Converter) ConvertSource(src Source) (*Document, error) {
	doc, _, err := c.assemble(src, -1, -1)
	return doc, err
}

func (c *Converter) convert(data []byte, startPage, endPage int) (*Document, ProcessingMetrics, error) {
	if err := c.preflight(data); err != nil {
		return nil, ProcessingMetrics{}, err
	}

	openStart := time.Now()
	doc, err := c.open(data)
	if err != nil {
		return nil, ProcessingMetrics{}, err
	}
	defer c.close(doc)
	openTime := time.Since(openStart)

	src := newPdfiumSource(c.instance, doc, c.config.RunGapFactor)
	result, metrics, err := c.assemble(src, startPage, endPage)
	metrics.DocumentOpen = openTime
	return result, metrics, err
}

func (c *Converter) readFile(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat PDF document")
	}
	if err := c.checkSize(info.Size()); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read PDF document")
	}
	return data, nil
}

func (c *Converter) checkSize(size int64) error {
	if c.config.MaxInputBytes > 0 && size > c.config.MaxInputBytes {
		return errors.Wrapf(ErrInputTooLarge, "%d bytes exceeds limit of %d", size, c.config.MaxInputBytes)
	}
	return nil
}

// open loads a document into pdfium, mapping pdfium failures onto input errors.
func (c *Converter) open(data []byte) (references.FPDF_DOCUMENT, error) {
	if c.instance == nil {
		return "", errors.New("converter has no pdfium instance")
	}

	doc, err := c.instance.OpenDocument(&requests.OpenDocument{
		File: &data,
	})
	if err != nil {
		if isPasswordError(err) {
			return "", errors.Wrap(ErrPasswordProtected, err.Error())
		}
		return "", errors.Wrap(ErrCorruptDocument, err.Error())
	}
	return doc.Document, nil
}

func (c *Converter) close(doc references.FPDF_DOCUMENT) {
	c.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc,
	})
}

// calculateDocumentStatistics calculates statistics for the document.
func calculateDocumentStatistics(doc *Document) DocumentStatistics {
	stats := DocumentStatistics{
		TotalPages:  len(doc.Pages),
		FailedPages: len(doc.Failures),
	}

	for _, page := range doc.Pages {
		if page.Strategy == FullPageRaster {
			stats.RasterPages++
		}
	}

	for _, block := range doc.Blocks {
		switch block.(type) {
		case Heading:
			stats.TotalHeadings++
		case Paragraph:
			stats.TotalParagraphs++
		case ListItem:
			stats.TotalListItems++
		case Table:
			stats.TotalTables++
		case Image:
			stats.TotalImages++
		}
		stats.TotalCharacters += len([]rune(PlainText(block)))
	}

	return stats
}

// logProcessingMetrics logs the processing metrics as structured fields.
func logProcessingMetrics(logger logrus.FieldLogger, metrics ProcessingMetrics) {
	stats := metrics.Statistics
	logger.WithFields(logrus.Fields{
		"total_time":   metrics.TotalTime.Round(time.Millisecond),
		"open_time":    metrics.DocumentOpen.Round(time.Millisecond),
		"pages":        stats.TotalPages,
		"raster_pages": stats.RasterPages,
		"failed_pages": stats.FailedPages,
		"paragraphs":   stats.TotalParagraphs,
		"headings":     stats.TotalHeadings,
		"list_items":   stats.TotalListItems,
		"tables":       stats.TotalTables,
		"images":       stats.TotalImages,
		"characters":   stats.TotalCharacters,
	}).Info("PDF processing metrics")

	for _, pm := range metrics.PageExtractions {
		logger.WithFields(logrus.Fields{
			"page":     pm.PageNumber,
			"duration": pm.Duration.Round(time.Millisecond),
			"strategy": pm.Strategy.String(),
			"blocks":   pm.Blocks,
			"failed":   pm.Failed,
		}).Info("page processed")
	}

	if len(metrics.PageExtractions) > 0 {
		avgTime := metrics.TotalTime / time.Duration(len(metrics.PageExtractions))
		logger.WithField("avg_per_page", avgTime.Round(time.Millisecond)).Info("PDF processing average")
	}
}
