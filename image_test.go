package pdfblocks

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImage_RGBBitmapGetsOpaqueAlpha(t *testing.T) {
	bitmap := []byte{
		10, 20, 30, 40, 50, 60,
		70, 80, 90, 100, 110, 120,
	}

	img, err := DecodeImage(RawImage{Width: 2, Height: 2, Bitmap: bitmap})
	require.NoError(t, err)

	require.Len(t, img.Pix, 2*2*4)
	for i := 0; i < 4; i++ {
		assert.Equal(t, bitmap[i*3:i*3+3], img.Pix[i*4:i*4+3], "pixel %d", i)
		assert.Equal(t, byte(255), img.Pix[i*4+3], "pixel %d alpha", i)
	}
}

func TestDecodeImage_KnownChannels(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		data     []byte
		want     []byte
	}{
		{
			name:     "gray",
			channels: 1,
			data:     []byte{7, 200},
			want:     []byte{7, 7, 7, 255, 200, 200, 200, 255},
		},
		{
			name:     "rgb",
			channels: 3,
			data:     []byte{1, 2, 3, 4, 5, 6},
			want:     []byte{1, 2, 3, 255, 4, 5, 6, 255},
		},
		{
			name:     "rgba copied as-is",
			channels: 4,
			data:     []byte{1, 2, 3, 0, 4, 5, 6, 128},
			want:     []byte{1, 2, 3, 0, 4, 5, 6, 128},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImage(RawImage{Width: 2, Height: 1, Channels: tt.channels, Data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, tt.want, img.Pix)
			assert.Equal(t, 2, img.Width)
			assert.Equal(t, 1, img.Height)
		})
	}
}

func TestDecodeImage_InfersBitmapLayout(t *testing.T) {
	for _, channels := range []int{1, 3, 4} {
		bitmap := bytes.Repeat([]byte{42}, 3*5*channels)

		img, err := DecodeImage(RawImage{Width: 3, Height: 5, Bitmap: bitmap})

		require.NoError(t, err, "channels %d", channels)
		assert.Len(t, img.Pix, 3*5*4, "channels %d", channels)
	}
}

func TestDecodeImage_MismatchedDataFallsBackToBitmap(t *testing.T) {
	raw := RawImage{
		Width:    1,
		Height:   1,
		Channels: 3,
		Data:     []byte{1, 2},
		Bitmap:   []byte{9},
	}

	img, err := DecodeImage(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9, 9, 255}, img.Pix)
}

func TestDecodeImage_Unrecognized(t *testing.T) {
	tests := []struct {
		name string
		raw  RawImage
	}{
		{name: "no data", raw: RawImage{Width: 2, Height: 2}},
		{name: "odd bitmap length", raw: RawImage{Width: 2, Height: 2, Bitmap: make([]byte, 7)}},
		{name: "unsupported channels", raw: RawImage{Width: 1, Height: 1, Channels: 2, Data: []byte{1, 2}}},
		{name: "zero width", raw: RawImage{Width: 0, Height: 2, Bitmap: make([]byte, 4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImage(tt.raw)
			assert.Nil(t, img)
			assert.True(t, errors.Is(err, ErrUnrecognizedEncoding), "got %v", err)
		})
	}
}

func TestNewRasterImage_RejectsMismatchedBuffer(t *testing.T) {
	_, err := NewRasterImage(2, 2, make([]byte, 15))
	assert.Error(t, err)

	_, err = NewRasterImage(0, 2, nil)
	assert.Error(t, err)

	img, err := NewRasterImage(2, 2, make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, 8, img.NRGBA().Stride)
}

func TestRasterImage_PNGAndDataURI(t *testing.T) {
	img, err := NewRasterImage(1, 1, []byte{255, 0, 0, 255})
	require.NoError(t, err)

	data, err := img.PNG()
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, a := decoded.At(0, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0, 0xffff}, []uint32{r, g, b, a})

	uri, err := img.DataURI()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestUnpackBitmap(t *testing.T) {
	t.Run("bgr with row padding", func(t *testing.T) {
		// 2x2 BGR, stride 8 (two bytes of padding per row)
		buf := []byte{
			3, 2, 1, 6, 5, 4, 0, 0,
			9, 8, 7, 12, 11, 10, 0, 0,
		}
		out, err := unpackBitmap(buf, 2, 2, 8, 3, 3)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, out)
	})

	t.Run("bgrx drops padding byte", func(t *testing.T) {
		out, err := unpackBitmap([]byte{3, 2, 1, 99}, 1, 1, 4, 4, 3)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, out)
	})

	t.Run("bgra keeps alpha", func(t *testing.T) {
		out, err := unpackBitmap([]byte{3, 2, 1, 128}, 1, 1, 4, 4, 4)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3, 128}, out)
	})

	t.Run("gray", func(t *testing.T) {
		out, err := unpackBitmap([]byte{5, 6, 0, 0, 7, 8}, 2, 2, 4, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, []byte{5, 6, 7, 8}, out)
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := unpackBitmap([]byte{1, 2, 3}, 2, 1, 6, 3, 3)
		assert.Error(t, err)
	})
}
