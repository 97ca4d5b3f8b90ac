package pdfblocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineOf(runs ...TextRun) Line {
	return newLine(runs)
}

func TestSynthesizeTable_PadsRaggedRows(t *testing.T) {
	lines := []Line{
		lineOf(run("Item", 10, 700, 30, 10), run("Unit", 150, 700, 30, 10), run("Total", 300, 700, 30, 10)),
		lineOf(run("Widget", 10, 680, 40, 10), run("4", 150, 680, 10, 10)),
	}

	table, ok := SynthesizeTable(lines, DefaultThresholds())

	require.True(t, ok)
	assert.Equal(t, 3, table.NumCols())
	assert.Equal(t, [][]string{
		{"Item", "Unit", "Total"},
		{"Widget", "4", ""},
	}, table.Rows)
}

func TestSynthesizeTable_MergesCloseRunsIntoOneCell(t *testing.T) {
	lines := []Line{
		lineOf(run("Unit", 10, 700, 25, 10), run("Price", 40, 700, 30, 10), run("Qty", 200, 700, 20, 10)),
		lineOf(run("9.99", 10, 680, 25, 10), run("2", 200, 680, 10, 10)),
	}

	table, ok := SynthesizeTable(lines, DefaultThresholds())

	require.True(t, ok)
	assert.Equal(t, []string{"Unit Price", "Qty"}, table.Rows[0])
	assert.Equal(t, []string{"9.99", "2"}, table.Rows[1])
}

func TestSynthesizeTable_Degenerate(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name  string
		lines []Line
	}{
		{
			name:  "no lines",
			lines: nil,
		},
		{
			name: "single line",
			lines: []Line{
				lineOf(run("a", 10, 700, 10, 10), run("b", 200, 700, 10, 10)),
			},
		},
		{
			name: "single column",
			lines: []Line{
				lineOf(run("a", 10, 700, 10, 10), run("b", 30, 700, 10, 10)),
				lineOf(run("c", 10, 680, 10, 10)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := SynthesizeTable(tt.lines, th)
			assert.False(t, ok)
		})
	}
}

func TestBuildSegmentsFromLine_UsesColumnGap(t *testing.T) {
	line := lineOf(
		run("left", 10, 700, 20, 10),
		run("still-left", 40, 700, 40, 10),
		run("right", 161, 700, 20, 10),
	)

	segments := buildSegmentsFromLine(line, 80)

	require.Len(t, segments, 2)
	assert.Equal(t, "left still-left", segments[0].Text())
	assert.Equal(t, "right", segments[1].Text())
	assert.Equal(t, Rect{X0: 10, Y0: 700, X1: 80, Y1: 710}, segments[0].Box)
}

func TestNewTable_Rectangular(t *testing.T) {
	table := NewTable([][]string{{"a"}, {"b", "c", "d"}, {}})

	require.Len(t, table.Rows, 3)
	for _, row := range table.Rows {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, []string{"a", "", ""}, table.Rows[0])
	assert.Equal(t, []string{"", "", ""}, table.Rows[2])
}
