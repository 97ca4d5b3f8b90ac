package pdfblocks

import (
	"image"
	"math"
	"strings"
	"unicode"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/text/unicode/norm"
)

// pdfiumSource implements Source over an open pdfium document.
// Pages are addressed by index so pdfium keeps the current page loaded between calls.
type pdfiumSource struct {
	instance     pdfium.Pdfium
	document     references.FPDF_DOCUMENT
	runGapFactor float64
}

func newPdfiumSource(instance pdfium.Pdfium, document references.FPDF_DOCUMENT, runGapFactor float64) *pdfiumSource {
	if runGapFactor <= 0 {
		runGapFactor = 1.0
	}
	return &pdfiumSource{
		instance:     instance,
		document:     document,
		runGapFactor: runGapFactor,
	}
}

func (s *pdfiumSource) page(index int) requests.Page {
	return requests.Page{
		ByIndex: &requests.PageByIndex{
			Document: s.document,
			Index:    index,
		},
	}
}

// PageCount returns the number of pages in the document.
func (s *pdfiumSource) PageCount() (int, error) {
	pageCount, err := s.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: s.document,
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get page count")
	}
	return pageCount.PageCount, nil
}

// PageText extracts the page's text runs in PDF coordinates.
func (s *pdfiumSource) PageText(index int) ([]TextRun, PageSize, error) {
	pageWidth, err := s.instance.FPDF_GetPageWidthF(&requests.FPDF_GetPageWidthF{
		Page: s.page(index),
	})
	if err != nil {
		return nil, PageSize{}, errors.Wrap(err, "failed to get page width")
	}

	pageHeight, err := s.instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: s.page(index),
	})
	if err != nil {
		return nil, PageSize{}, errors.Wrap(err, "failed to get page height")
	}

	size := PageSize{
		Width:  float64(pageWidth.PageWidth),
		Height: float64(pageHeight.PageHeight),
	}

	textPage, err := s.instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: s.page(index),
	})
	if err != nil {
		return nil, size, errors.Wrap(err, "failed to load text page")
	}
	defer s.instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := s.instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, size, errors.Wrap(err, "failed to count characters")
	}
	if charCount.Count == 0 {
		return nil, size, nil
	}

	chars := s.extractChars(textPage.TextPage, charCount.Count)
	return groupCharsIntoRuns(chars, s.runGapFactor), size, nil
}

// pdfChar is a single character with its placement.
type pdfChar struct {
	Text     rune
	Box      Rect
	OriginX  float64
	OriginY  float64
	FontSize float64
	FontName string
}

// extractChars reads every character of a text page. Characters whose geometry cannot be
// read are skipped.
func (s *pdfiumSource) extractChars(textPage references.FPDF_TEXTPAGE, count int) []pdfChar {
	chars := make([]pdfChar, 0, count)

	for i := range count {
		unicodeRes, err := s.instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}

		charBox, err := s.instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		char := pdfChar{
			Text: rune(unicodeRes.Unicode),
			Box: Rect{
				X0: charBox.Left,
				Y0: charBox.Bottom,
				X1: charBox.Right,
				Y1: charBox.Top,
			},
			OriginX:  charBox.Left,
			OriginY:  charBox.Bottom,
			FontSize: 12.0,
		}

		origin, err := s.instance.FPDFText_GetCharOrigin(&requests.FPDFText_GetCharOrigin{
			TextPage: textPage,
			Index:    i,
		})
		if err == nil {
			char.OriginX = origin.X
			char.OriginY = origin.Y
		}

		fontSize, err := s.instance.FPDFText_GetFontSize(&requests.FPDFText_GetFontSize{
			TextPage: textPage,
			Index:    i,
		})
		if err == nil && fontSize.FontSize > 0 {
			char.FontSize = fontSize.FontSize
		}

		fontInfo, err := s.instance.FPDFText_GetFontInfo(&requests.FPDFText_GetFontInfo{
			TextPage: textPage,
			Index:    i,
		})
		if err == nil {
			char.FontName = fontInfo.FontName
		}

		chars = append(chars, char)
	}

	return chars
}

// groupCharsIntoRuns merges characters in content order into runs. A run ends at a line
// break, a baseline change, a jump backwards, or a horizontal gap wider than gapFactor
// times the font size. Word spaces therefore stay inside a run while column gaps split it.
func groupCharsIntoRuns(chars []pdfChar, gapFactor float64) []TextRun {
	var runs []TextRun
	var text strings.Builder
	var current []pdfChar

	flush := func() {
		if len(current) == 0 {
			return
		}
		if run, ok := aggregateRun(current, text.String()); ok {
			runs = append(runs, run)
		}
		current = nil
		text.Reset()
	}

	for _, char := range chars {
		if char.Text == '\r' || char.Text == '\n' {
			flush()
			continue
		}

		if unicode.IsSpace(char.Text) {
			if len(current) > 0 {
				text.WriteRune(' ')
			}
			continue
		}

		if len(current) > 0 {
			last := current[len(current)-1]
			fontSize := math.Max(last.FontSize, char.FontSize)
			gap := char.Box.X0 - last.Box.X1
			if math.Abs(char.OriginY-current[0].OriginY) > fontSize*0.2 ||
				gap > fontSize*gapFactor ||
				gap < -fontSize {
				flush()
			}
		}

		current = append(current, char)
		text.WriteRune(char.Text)
	}
	flush()

	return runs
}

// aggregateRun creates a TextRun from its characters. Text is NFKC normalised, which also
// expands ligatures such as "ﬁ".
func aggregateRun(chars []pdfChar, text string) (TextRun, bool) {
	text = strings.TrimSpace(norm.NFKC.String(text))
	if text == "" {
		return TextRun{}, false
	}

	box := chars[0].Box
	var fontSize float64
	fontCounts := make(map[string]int)
	for _, char := range chars {
		box = mergeRects(box, char.Box)
		fontSize = math.Max(fontSize, char.FontSize)
		fontCounts[char.FontName]++
	}

	var dominantFont string
	var maxCount int
	for font, count := range fontCounts {
		if count > maxCount || (count == maxCount && font < dominantFont) {
			dominantFont = font
			maxCount = count
		}
	}

	return TextRun{
		Text:     text,
		X:        box.X0,
		Y:        chars[0].OriginY,
		FontSize: fontSize,
		Width:    box.Width(),
		Height:   box.Height(),
		FontName: dominantFont,
	}, true
}

// RenderPage renders the page at 72*scale DPI.
func (s *pdfiumSource) RenderPage(index int, scale float64) (image.Image, error) {
	if scale <= 0 {
		scale = 1
	}

	rendered, err := s.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		Page: s.page(index),
		DPI:  int(math.Round(72 * scale)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to render page")
	}
	defer rendered.Cleanup()

	// Copy out of pdfium owned memory before Cleanup releases it
	src := rendered.Result.Image
	if src == nil {
		return nil, errors.New("renderer returned no image")
	}
	dst := image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst, nil
}
