package pdfblocks

import (
	"image"

	"golang.org/x/image/draw"
)

// Validation is the outcome of ValidateImage.
type Validation struct {
	Accepted bool
	Flat     bool    // variance below the flat threshold; informational only
	Opaque   int     // sampled pixels with non-zero alpha
	Mean     float64 // mean of R, G and B over opaque samples
	Variance float64 // variance of R, G and B over opaque samples
}

// ValidateImage inspects a downsampled copy of the raster. Images without a single
// non-transparent pixel are rejected; images with near-zero variance are kept but
// flagged as flat, since solid backgrounds are legitimate content.
// The raster's Valid and Flat fields are updated to match the result.
func ValidateImage(img *RasterImage, th Thresholds) Validation {
	if img == nil {
		return Validation{}
	}

	sample := downsample(img.NRGBA(), th.SampleSize)

	var n, sum, sumSquares float64
	opaque := 0
	for i := 0; i+3 < len(sample.Pix); i += 4 {
		if sample.Pix[i+3] == 0 {
			continue
		}
		opaque++
		for c := 0; c < 3; c++ {
			v := float64(sample.Pix[i+c])
			sum += v
			sumSquares += v * v
			n++
		}
	}

	result := Validation{Opaque: opaque}
	if opaque > 0 {
		result.Accepted = true
		result.Mean = sum / n
		result.Variance = sumSquares/n - result.Mean*result.Mean
		if result.Variance < 0 {
			result.Variance = 0
		}
		result.Flat = result.Variance < th.FlatVariance
	}

	img.Valid = result.Accepted
	img.Flat = result.Flat
	return result
}

// downsample returns src scaled to fit within size x size using nearest-neighbour sampling.
// Images already within bounds are returned unchanged.
func downsample(src *image.NRGBA, size int) *image.NRGBA {
	bounds := src.Bounds()
	if size <= 0 || (bounds.Dx() <= size && bounds.Dy() <= size) {
		return src
	}

	w, h := min(bounds.Dx(), size), min(bounds.Dy(), size)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}
