package pdfblocks

import (
	"image"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Block is one semantic unit of the reconstructed document.
// The set of implementations is closed: Heading, Paragraph, ListItem, List, Table and Image.
type Block interface {
	// Kind returns a short name for the block type, e.g. "heading".
	Kind() string
	block()
}

// Heading is a section title of level 1 to 3.
type Heading struct {
	Level int
	Text  string
}

// NewHeading returns a heading, rejecting levels outside 1..3.
func NewHeading(level int, text string) (Heading, error) {
	if level < 1 || level > 3 {
		return Heading{}, errors.Errorf("heading level %d out of range 1..3", level)
	}
	return Heading{Level: level, Text: text}, nil
}

// Paragraph is a run of body text.
type Paragraph struct {
	Text string
}

// ListItem is a single list entry with its marker stripped.
type ListItem struct {
	Text    string
	Ordered bool
}

// List groups consecutive list items. It is only produced when serialising.
type List struct {
	Items   []string
	Ordered bool
}

// Table is a rectangular grid of cell strings. The first row is the header.
type Table struct {
	Rows [][]string
}

// NewTable pads ragged rows with empty cells so that every row has the same width.
func NewTable(rows [][]string) Table {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	normalized := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, width)
		copy(cells, row)
		normalized[i] = cells
	}
	return Table{Rows: normalized}
}

// NumCols returns the number of columns in the table.
func (t Table) NumCols() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// Image is an embedded picture. Raster is nil when only a placeholder can be emitted.
type Image struct {
	Raster  *RasterImage
	Caption string
}

func (Heading) Kind() string   { return "heading" }
func (Paragraph) Kind() string { return "paragraph" }
func (ListItem) Kind() string  { return "list-item" }
func (List) Kind() string      { return "list" }
func (Table) Kind() string     { return "table" }
func (Image) Kind() string     { return "image" }

func (Heading) block()   {}
func (Paragraph) block() {}
func (ListItem) block()  {}
func (List) block()      {}
func (Table) block()     {}
func (Image) block()     {}

// RasterImage is a canonical RGBA pixel buffer with non-premultiplied alpha.
type RasterImage struct {
	Width  int
	Height int
	Pix    []byte // len(Pix) == Width*Height*4

	Valid bool // set by ValidateImage
	Flat  bool // low colour variance, kept but flagged
}

// NewRasterImage wraps an RGBA buffer, rejecting buffers whose length does not match the dimensions.
func NewRasterImage(width, height int, pix []byte) (*RasterImage, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid image dimensions %dx%d", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, errors.Errorf("pixel buffer length %d does not match %dx%d RGBA", len(pix), width, height)
	}
	return &RasterImage{Width: width, Height: height, Pix: pix}, nil
}

// NRGBA returns an image.NRGBA view sharing the raster's pixel buffer.
func (r *RasterImage) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// rasterFromImage converts any decoded image into a canonical raster.
func rasterFromImage(img image.Image) (*RasterImage, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}

	bounds := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == bounds.Dx()*4 && bounds.Min == (image.Point{}) {
		return NewRasterImage(bounds.Dx(), bounds.Dy(), nrgba.Pix)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return NewRasterImage(bounds.Dx(), bounds.Dy(), dst.Pix)
}

// PlainText returns the textual content of a block, used for statistics and plain exports.
func PlainText(b Block) string {
	switch v := b.(type) {
	case Heading:
		return v.Text
	case Paragraph:
		return v.Text
	case ListItem:
		return v.Text
	case List:
		return strings.Join(v.Items, "\n")
	case Table:
		rows := make([]string, len(v.Rows))
		for i, row := range v.Rows {
			rows[i] = strings.Join(row, "\t")
		}
		return strings.Join(rows, "\n")
	case Image:
		return v.Caption
	}
	return ""
}
