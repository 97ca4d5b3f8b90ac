package pdfblocks

import (
	"github.com/klippa-app/go-pdfium/enums"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// pageObjects returns every top-level page object of a page together with its type.
func (s *pdfiumSource) pageObjects(index int) ([]references.FPDF_PAGEOBJECT, []enums.FPDF_PAGEOBJ, error) {
	countResp, err := s.instance.FPDFPage_CountObjects(&requests.FPDFPage_CountObjects{
		Page: s.page(index),
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to count page objects")
	}

	objects := make([]references.FPDF_PAGEOBJECT, 0, countResp.Count)
	types := make([]enums.FPDF_PAGEOBJ, 0, countResp.Count)

	for i := 0; i < countResp.Count; i++ {
		objResp, err := s.instance.FPDFPage_GetObject(&requests.FPDFPage_GetObject{
			Page:  s.page(index),
			Index: i,
		})
		if err != nil {
			continue
		}

		typeResp, err := s.instance.FPDFPageObj_GetType(&requests.FPDFPageObj_GetType{
			PageObject: objResp.PageObject,
		})
		if err != nil {
			continue
		}

		objects = append(objects, objResp.PageObject)
		types = append(types, typeResp.Type)
	}

	return objects, types, nil
}

// Operators counts the page's text, image, form and path objects.
func (s *pdfiumSource) Operators(index int) (OperatorCounts, error) {
	_, types, err := s.pageObjects(index)
	if err != nil {
		return OperatorCounts{}, err
	}

	var counts OperatorCounts
	for _, t := range types {
		switch t {
		case enums.FPDF_PAGEOBJ_TEXT:
			counts.Text++
		case enums.FPDF_PAGEOBJ_IMAGE:
			counts.Image++
		case enums.FPDF_PAGEOBJ_FORM:
			counts.Form++
		case enums.FPDF_PAGEOBJ_PATH:
			counts.Path++
		}
	}
	return counts, nil
}

// PageImages extracts the page's image objects. Each descriptor carries the rendered
// bitmap as unpacked RGB(A)/gray samples when pdfium can produce one, and otherwise the
// decoded stream data whose layout DecodeImage infers from its length.
func (s *pdfiumSource) PageImages(index int) ([]RawImage, error) {
	objects, types, err := s.pageObjects(index)
	if err != nil {
		return nil, err
	}

	var images []RawImage
	for i, obj := range objects {
		if types[i] != enums.FPDF_PAGEOBJ_IMAGE {
			continue
		}

		raw, err := s.readBitmap(obj)
		if err != nil {
			raw, err = s.readDecodedData(index, obj)
		}
		if err != nil {
			// A single unreadable image must not hide the others
			continue
		}
		images = append(images, raw)
	}

	return images, nil
}

// readBitmap copies an image object's bitmap, dropping row padding and converting
// pdfium's BGR ordering to RGB.
func (s *pdfiumSource) readBitmap(obj references.FPDF_PAGEOBJECT) (RawImage, error) {
	bitmap, err := s.instance.FPDFImageObj_GetBitmap(&requests.FPDFImageObj_GetBitmap{
		ImageObject: obj,
	})
	if err != nil {
		return RawImage{}, errors.Wrap(err, "failed to get image bitmap")
	}
	defer s.instance.FPDFBitmap_Destroy(&requests.FPDFBitmap_Destroy{
		Bitmap: bitmap.Bitmap,
	})

	width, err := s.instance.FPDFBitmap_GetWidth(&requests.FPDFBitmap_GetWidth{Bitmap: bitmap.Bitmap})
	if err != nil {
		return RawImage{}, errors.Wrap(err, "failed to get bitmap width")
	}
	height, err := s.instance.FPDFBitmap_GetHeight(&requests.FPDFBitmap_GetHeight{Bitmap: bitmap.Bitmap})
	if err != nil {
		return RawImage{}, errors.Wrap(err, "failed to get bitmap height")
	}
	stride, err := s.instance.FPDFBitmap_GetStride(&requests.FPDFBitmap_GetStride{Bitmap: bitmap.Bitmap})
	if err != nil {
		return RawImage{}, errors.Wrap(err, "failed to get bitmap stride")
	}
	format, err := s.instance.FPDFBitmap_GetFormat(&requests.FPDFBitmap_GetFormat{Bitmap: bitmap.Bitmap})
	if err != nil {
		return RawImage{}, errors.Wrap(err, "failed to get bitmap format")
	}
	buffer, err := s.instance.FPDFBitmap_GetBuffer(&requests.FPDFBitmap_GetBuffer{Bitmap: bitmap.Bitmap})
	if err != nil {
		return RawImage{}, errors.Wrap(err, "failed to get bitmap buffer")
	}

	var srcBytes, channels int
	switch format.Format {
	case enums.FPDF_BITMAP_FORMAT_GRAY:
		srcBytes, channels = 1, 1
	case enums.FPDF_BITMAP_FORMAT_BGR:
		srcBytes, channels = 3, 3
	case enums.FPDF_BITMAP_FORMAT_BGRX:
		srcBytes, channels = 4, 3
	case enums.FPDF_BITMAP_FORMAT_BGRA:
		srcBytes, channels = 4, 4
	default:
		return RawImage{}, errors.Errorf("unsupported bitmap format %v", format.Format)
	}

	data, err := unpackBitmap(buffer.Buffer, width.Width, height.Height, stride.Stride, srcBytes, channels)
	if err != nil {
		return RawImage{}, err
	}

	return RawImage{
		Width:    width.Width,
		Height:   height.Height,
		Channels: channels,
		Data:     data,
	}, nil
}

// unpackBitmap copies rows of srcBytes-per-pixel BGR(X/A) or gray samples into a tightly
// packed RGB(A)/gray buffer with the given channel count.
func unpackBitmap(buf []byte, width, height, stride, srcBytes, channels int) ([]byte, error) {
	if width <= 0 || height <= 0 || stride < width*srcBytes || len(buf) < stride*(height-1)+width*srcBytes {
		return nil, errors.Errorf("bitmap buffer of %d bytes too small for %dx%d stride %d", len(buf), width, height, stride)
	}

	out := make([]byte, 0, width*height*channels)
	for y := 0; y < height; y++ {
		row := buf[y*stride:]
		for x := 0; x < width; x++ {
			px := row[x*srcBytes:]
			if channels == 1 {
				out = append(out, px[0])
				continue
			}
			out = append(out, px[2], px[1], px[0])
			if channels == 4 {
				out = append(out, px[3])
			}
		}
	}
	return out, nil
}

// readDecodedData returns the image's decoded stream with dimensions from its metadata.
// The channel count is left unknown.
func (s *pdfiumSource) readDecodedData(index int, obj references.FPDF_PAGEOBJECT) (RawImage, error) {
	metadata, err := s.instance.FPDFImageObj_GetImageMetadata(&requests.FPDFImageObj_GetImageMetadata{
		ImageObject: obj,
		Page:        s.page(index),
	})
	if err != nil {
		return RawImage{}, errors.Wrap(err, "failed to get image metadata")
	}

	decoded, err := s.instance.FPDFImageObj_GetImageDataDecoded(&requests.FPDFImageObj_GetImageDataDecoded{
		ImageObject: obj,
	})
	if err != nil {
		return RawImage{}, errors.Wrap(err, "failed to get decoded image data")
	}

	return RawImage{
		Width:  int(metadata.ImageMetadata.Width),
		Height: int(metadata.ImageMetadata.Height),
		Bitmap: decoded.Data,
	}, nil
}
