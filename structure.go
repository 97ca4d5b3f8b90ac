package pdfblocks

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// ClusterPage groups the runs of one page into lines and classifies each line as a
// heading, paragraph, list item or table row. Runs of consecutive table-row candidates
// are resolved through SynthesizeTable.
func ClusterPage(runs []TextRun, pageWidth float64, th Thresholds) []Block {
	if len(runs) == 0 {
		return nil
	}

	lines := groupRunsIntoLines(runs, th.LineTolerance)
	meanFontSize := averageFontSize(runs)

	var blocks []Block
	var candidates []Line

	flush := func() {
		blocks = append(blocks, resolveCandidates(candidates, th)...)
		candidates = nil
	}

	for _, line := range lines {
		text := line.Text()
		if text == "" {
			continue
		}

		if isTableRowCandidate(line, pageWidth, th) {
			candidates = append(candidates, line)
			continue
		}
		if len(candidates) > 0 {
			flush()
		}

		blocks = append(blocks, classifyLine(line, text, meanFontSize, th))
	}

	if len(candidates) > 0 {
		flush()
	}

	return blocks
}

// groupRunsIntoLines sorts runs top to bottom and starts a new line whenever a run's
// baseline lies more than tolerance below the baseline of the line's first run.
func groupRunsIntoLines(runs []TextRun, tolerance float64) []Line {
	if len(runs) == 0 {
		return nil
	}

	sorted := make([]TextRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	current := []TextRun{sorted[0]}
	anchorY := sorted[0].Y
	for i := 1; i < len(sorted); i++ {
		run := sorted[i]
		if anchorY-run.Y <= tolerance {
			current = append(current, run)
			continue
		}
		lines = append(lines, lineFromRuns(current))
		current = []TextRun{run}
		anchorY = run.Y
	}
	lines = append(lines, lineFromRuns(current))

	return lines
}

func lineFromRuns(runs []TextRun) Line {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].X < runs[j].X
	})
	return newLine(runs)
}

// isTableRowCandidate reports whether a line's spacing suggests a table row.
func isTableRowCandidate(line Line, pageWidth float64, th Thresholds) bool {
	if len(line.Runs) < 2 {
		return false
	}

	for i := 1; i < len(line.Runs); i++ {
		if horizontalGap(line.Runs[i-1], line.Runs[i]) > th.ColumnGap {
			return true
		}
	}

	if len(line.Runs) >= th.MinSpanRuns && pageWidth > 0 {
		span := line.Runs[len(line.Runs)-1].Right() - line.Runs[0].X
		if span >= pageWidth*th.SpanRatio {
			return true
		}
	}

	return false
}

// resolveCandidates turns a buffered run of candidate lines into a table, or demotes the
// lines to paragraphs when a table cannot be formed.
func resolveCandidates(lines []Line, th Thresholds) []Block {
	if len(lines) >= 2 {
		if table, ok := SynthesizeTable(lines, th); ok {
			return []Block{table}
		}
	}

	var blocks []Block
	for _, line := range lines {
		if text := line.Text(); text != "" {
			blocks = append(blocks, Paragraph{Text: text})
		}
	}
	return blocks
}

// classifyLine assigns a non-table line to a list item, heading or paragraph.
func classifyLine(line Line, text string, meanFontSize float64, th Thresholds) Block {
	if item, ok := parseListItem(text); ok {
		return item
	}

	if level := headingLevel(line.FontSize, meanFontSize, text, th); level > 0 {
		return Heading{Level: level, Text: text}
	}

	return Paragraph{Text: text}
}

// headingLevel returns 1 or 2 for heading-sized text and 0 otherwise.
func headingLevel(fontSize, meanFontSize float64, text string, th Thresholds) int {
	if meanFontSize <= 0 {
		return 0
	}

	ratio := fontSize / meanFontSize
	switch {
	case ratio > th.H1Ratio:
		return 1
	case ratio > th.H2Ratio && utf8.RuneCountInString(text) < th.H2MaxLength:
		return 2
	}
	return 0
}

var (
	bulletPrefix = regexp.MustCompile(`^(?:[•◦▪▫‣⁃●○■□►▶→·]\s*|[-–*+]\s+)`)
	numberPrefix = regexp.MustCompile(`^(?:\d{1,3}|[a-zA-Z])[.)]\s+`)
	cjkPrefix    = regexp.MustCompile(`^(?:[一二三四五六七八九十百]+[、.．)）]|[（(][一二三四五六七八九十百]+[）)])\s*`)
)

// parseListItem detects bullet and enumerator prefixes and strips them.
func parseListItem(text string) (ListItem, bool) {
	for _, p := range []struct {
		re      *regexp.Regexp
		ordered bool
	}{
		{bulletPrefix, false},
		{numberPrefix, true},
		{cjkPrefix, true},
	} {
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(text[loc[1]:])
		if rest == "" {
			return ListItem{}, false
		}
		return ListItem{Text: rest, Ordered: p.ordered}, true
	}
	return ListItem{}, false
}
