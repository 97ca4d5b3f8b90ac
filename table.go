package pdfblocks

import "sort"

// Segment is a group of horizontally adjacent runs that forms one table cell.
type Segment struct {
	Runs []TextRun
	Box  Rect
}

// Text returns the segment's runs joined by single spaces.
func (s Segment) Text() string {
	return newLine(s.Runs).Text()
}

// SynthesizeTable converts consecutive table-row candidate lines into a rectangular table.
// It returns false when the result would be degenerate: fewer than two lines, no row
// with more than one column, or no text at all.
func SynthesizeTable(lines []Line, th Thresholds) (Table, bool) {
	if len(lines) < 2 {
		return Table{}, false
	}

	rows := make([][]string, 0, len(lines))
	maxCols := 0
	hasText := false

	for _, line := range lines {
		segments := buildSegmentsFromLine(line, th.ColumnGap)
		cells := make([]string, len(segments))
		for i, seg := range segments {
			cells[i] = seg.Text()
			if cells[i] != "" {
				hasText = true
			}
		}
		maxCols = max(maxCols, len(cells))
		rows = append(rows, cells)
	}

	if maxCols < 2 || !hasText {
		return Table{}, false
	}

	return NewTable(rows), true
}

// buildSegmentsFromLine splits a line into segments wherever the gap between a run's
// right edge and the next run's left edge exceeds columnGap.
func buildSegmentsFromLine(line Line, columnGap float64) []Segment {
	if len(line.Runs) == 0 {
		return nil
	}

	runs := make([]TextRun, len(line.Runs))
	copy(runs, line.Runs)
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].X < runs[j].X
	})

	segments := []Segment{{Runs: []TextRun{runs[0]}, Box: runs[0].Box()}}
	for i := 1; i < len(runs); i++ {
		current := &segments[len(segments)-1]
		if horizontalGap(runs[i-1], runs[i]) > columnGap {
			segments = append(segments, Segment{Runs: []TextRun{runs[i]}, Box: runs[i].Box()})
			continue
		}
		current.Runs = append(current.Runs, runs[i])
		current.Box = mergeRects(current.Box, runs[i].Box())
	}

	return segments
}
