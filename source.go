package pdfblocks

import "image"

// ContainerParser exposes the page structure of an opened document.
type ContainerParser interface {
	// PageCount returns the number of pages in the document.
	PageCount() (int, error)
	// PageText returns the ordered text runs of a page and its viewport size.
	PageText(index int) ([]TextRun, PageSize, error)
	// Operators summarises the drawing objects of a page.
	Operators(index int) (OperatorCounts, error)
}

// ImageExtractor returns the embedded rasters of a page.
type ImageExtractor interface {
	PageImages(index int) ([]RawImage, error)
}

// Rasterizer renders a whole page at the given scale factor.
type Rasterizer interface {
	RenderPage(index int, scale float64) (image.Image, error)
}

// Source bundles the collaborators needed to reconstruct a document.
type Source interface {
	ContainerParser
	ImageExtractor
	Rasterizer
}
