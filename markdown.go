package pdfblocks

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/ivanvanderbyl/markdown"
	"github.com/pkg/errors"
)

// ImageResolver returns the link target for an image block, e.g. a file path it was
// written to. An empty string renders the image as a placeholder.
type ImageResolver func(img Image) (string, error)

// ToMarkdown converts the document to markdown with images embedded as data URIs.
func (d *Document) ToMarkdown() (string, error) {
	return d.ToMarkdownWithImages(dataURIResolver)
}

// ToMarkdownWithImages converts the document to markdown, resolving image targets through resolve.
func (d *Document) ToMarkdownWithImages(resolve ImageResolver) (string, error) {
	return RenderMarkdown(d.Blocks, resolve)
}

// RenderMarkdown serialises blocks into markdown using the markdown builder.
func RenderMarkdown(blocks []Block, resolve ImageResolver) (string, error) {
	if resolve == nil {
		resolve = dataURIResolver
	}

	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	for _, b := range coalesceLists(blocks) {
		switch v := b.(type) {
		case Heading:
			switch v.Level {
			case 2:
				md.H2(v.Text)
			case 3:
				md.H3(v.Text)
			default:
				md.H1(v.Text)
			}
		case Paragraph:
			md.PlainText(escapeBlockMarkers(v.Text))
		case List:
			if v.Ordered {
				md.OrderedList(v.Items...)
			} else {
				md.BulletList(v.Items...)
			}
		case Table:
			convertTableToMarkdown(md, v)
		case Image:
			if err := convertImageToMarkdown(md, v, resolve); err != nil {
				return "", err
			}
		}
		md.LF()
	}

	if err := md.Build(); err != nil {
		return "", errors.Wrap(err, "failed to build markdown")
	}
	return buf.String(), nil
}

// convertTableToMarkdown renders the first row as the header.
func convertTableToMarkdown(md *markdown.Markdown, table Table) {
	if len(table.Rows) == 0 {
		return
	}

	clean := func(row []string) []string {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.ReplaceAll(cell, "\n", " ")
		}
		return cells
	}

	header := clean(table.Rows[0])
	var rows [][]string
	for _, row := range table.Rows[1:] {
		rows = append(rows, clean(row))
	}

	// The builder needs at least one body row
	if len(rows) == 0 {
		rows = [][]string{make([]string, len(header))}
	}

	md.Table(markdown.TableSet{
		Header: header,
		Rows:   rows,
	})
}

func convertImageToMarkdown(md *markdown.Markdown, img Image, resolve ImageResolver) error {
	if img.Raster == nil || !img.Raster.Valid {
		md.PlainText(markdown.Italic(imagePlaceholder(img)))
		return nil
	}

	src, err := resolve(img)
	if err != nil {
		return errors.Wrap(err, "failed to resolve image")
	}
	if src == "" {
		md.PlainText(markdown.Italic(imagePlaceholder(img)))
		return nil
	}

	md.PlainText("![" + img.Caption + "](" + src + ")")
	return nil
}

var orderedMarker = regexp.MustCompile(`^(\d{1,9})([.)])(\s|$)`)

// escapeBlockMarkers escapes text that markdown would otherwise read as a heading, quote,
// list, rule, code fence or table when it starts a paragraph.
func escapeBlockMarkers(text string) string {
	text = strings.ReplaceAll(text, "|", `\|`)

	if m := orderedMarker.FindStringSubmatchIndex(text); m != nil {
		return text[:m[3]] + `\` + text[m[4]:]
	}

	trimmed := strings.TrimLeft(text, " ")
	if trimmed == "" {
		return text
	}
	switch trimmed[0] {
	case '#', '>', '-', '+', '*', '=', '`', '~', '_':
		return text[:len(text)-len(trimmed)] + `\` + trimmed
	}
	return text
}

func dataURIResolver(img Image) (string, error) {
	return img.Raster.DataURI()
}
