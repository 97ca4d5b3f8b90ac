package pdfblocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectStrategy(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name    string
		signals PageSignals
		want    Strategy
	}{
		{
			name:    "no text",
			signals: PageSignals{},
			want:    FullPageRaster,
		},
		{
			name:    "scanned page",
			signals: PageSignals{ImageOps: 1},
			want:    FullPageRaster,
		},
		{
			name:    "images not recoverable",
			signals: PageSignals{TextBlocks: 5, ImageOps: 2, ExtractedImages: 0},
			want:    FullPageRaster,
		},
		{
			name:    "form content",
			signals: PageSignals{TextBlocks: 5, FormOps: 1},
			want:    FullPageRaster,
		},
		{
			name:    "heavy vector drawing without text",
			signals: PageSignals{PathOps: 500},
			want:    FullPageRaster,
		},
		{
			name:    "heavy vector drawing with text",
			signals: PageSignals{TextBlocks: 3, PathOps: 500},
			want:    Structured,
		},
		{
			name:    "text with extracted images",
			signals: PageSignals{TextBlocks: 3, ImageOps: 2, ExtractedImages: 1},
			want:    Structured,
		},
		{
			name:    "plain text",
			signals: PageSignals{TextBlocks: 1},
			want:    Structured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategy(tt.signals, th))
		})
	}
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "structured", Structured.String())
	assert.Equal(t, "full-page-raster", FullPageRaster.String())
	assert.Equal(t, "unknown", Strategy(42).String())
}
