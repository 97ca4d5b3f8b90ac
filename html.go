package pdfblocks

import (
	"bytes"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// coalesceLists merges consecutive ListItem blocks into List blocks. A list takes its
// ordering from its first item. Other blocks pass through unchanged and in order.
func coalesceLists(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	var current *List

	flush := func() {
		if current != nil {
			out = append(out, *current)
			current = nil
		}
	}

	for _, b := range blocks {
		item, ok := b.(ListItem)
		if !ok {
			flush()
			out = append(out, b)
			continue
		}
		if current == nil {
			current = &List{Ordered: item.Ordered}
		}
		current.Items = append(current.Items, item.Text)
	}
	flush()

	return out
}

// RenderHTML serialises blocks into block-tagged HTML for the editor.
func RenderHTML(blocks []Block) (string, error) {
	root := &html.Node{Type: html.DocumentNode}

	for _, b := range coalesceLists(blocks) {
		node, err := htmlNode(b)
		if err != nil {
			return "", err
		}
		if node != nil {
			root.AppendChild(node)
		}
	}

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", errors.Wrap(err, "failed to render HTML")
		}
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// ToHTML serialises the document's blocks.
func (d *Document) ToHTML() (string, error) {
	return RenderHTML(d.Blocks)
}

func htmlNode(b Block) (*html.Node, error) {
	switch v := b.(type) {
	case Heading:
		tag := atom.H1
		switch v.Level {
		case 2:
			tag = atom.H2
		case 3:
			tag = atom.H3
		}
		return textElement(tag, v.Text), nil
	case Paragraph:
		return textElement(atom.P, v.Text), nil
	case ListItem:
		return htmlNode(List{Items: []string{v.Text}, Ordered: v.Ordered})
	case List:
		tag := atom.Ul
		if v.Ordered {
			tag = atom.Ol
		}
		list := element(tag)
		for _, item := range v.Items {
			list.AppendChild(textElement(atom.Li, item))
		}
		return list, nil
	case Table:
		return tableNode(v), nil
	case Image:
		return imageNode(v)
	}
	return nil, errors.Errorf("unknown block type %T", b)
}

func tableNode(t Table) *html.Node {
	table := element(atom.Table)
	if len(t.Rows) == 0 {
		return table
	}

	thead := element(atom.Thead)
	header := element(atom.Tr)
	for _, cell := range t.Rows[0] {
		header.AppendChild(textElement(atom.Th, cell))
	}
	thead.AppendChild(header)
	table.AppendChild(thead)

	if len(t.Rows) > 1 {
		tbody := element(atom.Tbody)
		for _, row := range t.Rows[1:] {
			tr := element(atom.Tr)
			for _, cell := range row {
				tr.AppendChild(textElement(atom.Td, cell))
			}
			tbody.AppendChild(tr)
		}
		table.AppendChild(tbody)
	}
	return table
}

func imageNode(img Image) (*html.Node, error) {
	if img.Raster == nil || !img.Raster.Valid {
		p := textElement(atom.P, imagePlaceholder(img))
		p.Attr = append(p.Attr, html.Attribute{Key: "class", Val: "image-placeholder"})
		return p, nil
	}

	src, err := img.Raster.DataURI()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode image")
	}

	figure := element(atom.Figure)
	imgNode := element(atom.Img)
	imgNode.Attr = []html.Attribute{
		{Key: "src", Val: src},
		{Key: "alt", Val: img.Caption},
	}
	figure.AppendChild(imgNode)
	if img.Caption != "" {
		figure.AppendChild(textElement(atom.Figcaption, img.Caption))
	}
	return figure, nil
}

// imagePlaceholder is the text emitted for an image that has no usable pixels.
func imagePlaceholder(img Image) string {
	if img.Caption == "" {
		return "[image unavailable]"
	}
	return "[image unavailable: " + img.Caption + "]"
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func textElement(a atom.Atom, text string) *html.Node {
	n := element(a)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
