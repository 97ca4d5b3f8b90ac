package pdfblocks

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/pkg/errors"
)

// RawImage is a raster descriptor as delivered by an ImageExtractor.
//
// Data holds unpacked samples whose layout is described by Channels. Bitmap is an
// alternative buffer whose layout is unknown and has to be inferred from its length.
type RawImage struct {
	Width    int
	Height   int
	Channels int // 0 when unknown
	Data     []byte
	Bitmap   []byte
}

// DecodeImage converts a raw descriptor into a canonical RGBA raster.
// The first applicable rule wins: a known channel count with matching Data, then
// Bitmap with the channel count inferred from its length.
func DecodeImage(raw RawImage) (*RasterImage, error) {
	if raw.Width <= 0 || raw.Height <= 0 {
		return nil, errors.Wrapf(ErrUnrecognizedEncoding, "invalid dimensions %dx%d", raw.Width, raw.Height)
	}

	pixels := raw.Width * raw.Height

	if len(raw.Data) > 0 && isSupportedChannels(raw.Channels) && len(raw.Data) == pixels*raw.Channels {
		return NewRasterImage(raw.Width, raw.Height, expandToRGBA(raw.Data, raw.Channels, pixels))
	}

	if len(raw.Bitmap) > 0 {
		for _, channels := range []int{4, 3, 1} {
			if len(raw.Bitmap) == pixels*channels {
				return NewRasterImage(raw.Width, raw.Height, expandToRGBA(raw.Bitmap, channels, pixels))
			}
		}
	}

	return nil, errors.Wrapf(ErrUnrecognizedEncoding, "%dx%d image with %d channels, %d data bytes, %d bitmap bytes",
		raw.Width, raw.Height, raw.Channels, len(raw.Data), len(raw.Bitmap))
}

func isSupportedChannels(channels int) bool {
	return channels == 1 || channels == 3 || channels == 4
}

// expandToRGBA widens gray or RGB samples to RGBA with opaque alpha. RGBA input is copied.
func expandToRGBA(src []byte, channels, pixels int) []byte {
	dst := make([]byte, pixels*4)

	switch channels {
	case 4:
		copy(dst, src)
	case 3:
		for i := 0; i < pixels; i++ {
			dst[i*4] = src[i*3]
			dst[i*4+1] = src[i*3+1]
			dst[i*4+2] = src[i*3+2]
			dst[i*4+3] = 0xff
		}
	case 1:
		for i := 0; i < pixels; i++ {
			v := src[i]
			dst[i*4] = v
			dst[i*4+1] = v
			dst[i*4+2] = v
			dst[i*4+3] = 0xff
		}
	}

	return dst
}

// PNG encodes the raster as a PNG file.
func (r *RasterImage) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.NRGBA()); err != nil {
		return nil, errors.Wrap(err, "failed to encode PNG")
	}
	return buf.Bytes(), nil
}

// DataURI returns the raster as a base64 PNG data URI.
func (r *RasterImage) DataURI() (string, error) {
	data, err := r.PNG()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
