package pdfblocks

import "math"

// mergeRects returns the smallest rectangle containing both r1 and r2.
func mergeRects(r1, r2 Rect) Rect {
	return Rect{
		X0: math.Min(r1.X0, r2.X0),
		Y0: math.Min(r1.Y0, r2.Y0),
		X1: math.Max(r1.X1, r2.X1),
		Y1: math.Max(r1.Y1, r2.Y1),
	}
}

// averageFontSize calculates the mean font size across runs.
func averageFontSize(runs []TextRun) float64 {
	if len(runs) == 0 {
		return 0
	}
	var total float64
	for _, run := range runs {
		total += run.FontSize
	}
	return total / float64(len(runs))
}

// horizontalGap returns the distance between the right edge of a and the left edge of b.
func horizontalGap(a, b TextRun) float64 {
	return b.X - a.Right()
}
