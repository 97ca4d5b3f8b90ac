package pdfblocks

import (
	"math"
	"strconv"
	"strings"
)

// Rect represents a bounding box in PDF coordinates (origin bottom-left).
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Bottom
	X1 float64 // Right
	Y1 float64 // Top
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// TextRun is a contiguous piece of rendered text with a known origin and font size.
type TextRun struct {
	Text     string
	X        float64 // Origin X in page units
	Y        float64 // Baseline Y in page units, measured from the bottom of the page
	FontSize float64
	Width    float64
	Height   float64
	FontName string
}

// Right returns the X coordinate of the run's right edge.
func (r TextRun) Right() float64 {
	return r.X + r.Width
}

// Box returns the run's bounding box.
func (r TextRun) Box() Rect {
	return Rect{X0: r.X, Y0: r.Y, X1: r.X + r.Width, Y1: r.Y + r.Height}
}

// Line represents runs that share a baseline, ordered left to right.
type Line struct {
	Runs     []TextRun
	Y        float64 // Highest baseline on the line, the anchor used when grouping
	FontSize float64 // Largest font size on the line
	Box      Rect
}

// Text returns the line's run texts joined by single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Runs))
	for _, run := range l.Runs {
		text := strings.TrimSpace(run.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// newLine builds a line from runs already sorted by X.
func newLine(runs []TextRun) Line {
	line := Line{Runs: runs}
	if len(runs) == 0 {
		return line
	}

	line.Y = runs[0].Y
	line.Box = runs[0].Box()
	for _, run := range runs {
		line.Y = math.Max(line.Y, run.Y)
		line.FontSize = math.Max(line.FontSize, run.FontSize)
		line.Box = mergeRects(line.Box, run.Box())
	}
	return line
}

// PageSize holds the viewport dimensions of a page.
type PageSize struct {
	Width  float64
	Height float64
}

// OperatorCounts summarises the drawing objects found on a page.
type OperatorCounts struct {
	Text  int
	Image int
	Form  int
	Path  int
}

// PageSignals are the per-page counters consulted by SelectStrategy.
type PageSignals struct {
	TextBlocks      int
	ImageOps        int
	ExtractedImages int
	FormOps         int
	PathOps         int
}

// PageFailure records a page that contributed no blocks because of an error.
type PageFailure struct {
	Page  int    // 1-based page number
	Stage string // "text", "raster" or "panic"
	Err   error
}

func (f PageFailure) Error() string {
	return f.Stage + " failure on page " + strconv.Itoa(f.Page) + ": " + f.Err.Error()
}

// PageSummary describes how a single page was reconstructed.
type PageSummary struct {
	Number   int
	Width    float64
	Height   float64
	Strategy Strategy
	Blocks   int
}

// Document is the ordered block sequence spanning all processed pages.
type Document struct {
	Blocks   []Block
	Pages    []PageSummary
	Failures []PageFailure
}
