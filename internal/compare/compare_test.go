package compare

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTruncatesToShorter(t *testing.T) {
	c := New([]int{3, 5, 8, 2}, []int{3, 6, 6, 6, 1})
	assert.True(t, c.HasBaseline())
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []int{3, 5, 8, 2}, c.Primary)
	assert.Equal(t, []int{3, 6, 6, 6}, c.Baseline)
	assert.Equal(t, 8, c.Max)
}

func TestNewSingleSeries(t *testing.T) {
	c := New([]int{4, 9, 1}, nil)
	assert.False(t, c.HasBaseline())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 9, c.Max)
	assert.Nil(t, c.Regions())
}

func TestNewDoesNotAlias(t *testing.T) {
	primary := []int{1, 2}
	c := New(primary, nil)
	primary[0] = 99
	assert.Equal(t, 1, c.Primary[0])
}

func TestRegions(t *testing.T) {
	c := New([]int{3, 5, 8, 2}, []int{3, 6, 6, 6, 1})
	assert.Equal(t, []Region{
		{Start: 0, End: 2, Faster: false},
		{Start: 2, End: 3, Faster: true},
		{Start: 3, End: 4, Faster: false},
	}, c.Regions())
}

func TestRenderComparison(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, New([]int{3, 5, 8, 2}, []int{3, 6, 6, 6}), Options{Title: "Run 2 vs Run 1", Width: 20, Height: 4})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Run 2 vs Run 1")
	assert.Contains(t, out, "Faster")
	assert.Contains(t, out, "Slower")
	assert.Contains(t, out, "Time (seconds)")
	assert.NotContains(t, out, "\x1b[", "non-terminal writers get no color")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title, y label, 4 rows, 2 axis lines, legend
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[2], "8 │ "))
	assert.True(t, strings.HasPrefix(lines[5], "0 │ "))
}

func TestRenderSingleSeriesFillsBottomRow(t *testing.T) {
	out := RenderString(New([]int{1, 1, 1}, nil), Options{Width: 10, Height: 2, Compact: true})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[len(lines)-1], "Speed")
	bottom := []rune(strings.TrimPrefix(lines[1], "0 │ "))
	require.Len(t, bottom, 10)
	for _, r := range bottom {
		assert.Equal(t, rune(0x28ff), r, "a series at the maximum fills every dot")
	}
}

func TestRenderEmptySeries(t *testing.T) {
	out := RenderString(New(nil, nil), Options{Width: 10, Height: 3, Compact: true})
	assert.True(t, strings.HasPrefix(out, "1 │ "))
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 3)
	for _, line := range lines[:3] {
		assert.NotContains(t, line, string(rune(0x28ff)))
	}
}

func TestRenderPaint(t *testing.T) {
	seen := map[Class]bool{}
	paint := func(c Class, s string) string {
		seen[c] = true
		return s
	}
	RenderString(New([]int{1, 9}, []int{5, 5}), Options{Width: 10, Height: 3, Paint: paint})
	assert.True(t, seen[ClassFaster])
	assert.True(t, seen[ClassSlower])
	assert.False(t, seen[ClassArea])
}

func TestPlotWidthFor(t *testing.T) {
	assert.Equal(t, 80-2-3, PlotWidthFor(80, 42))
	assert.Equal(t, minPlotWidth, PlotWidthFor(0, 0))
	assert.Equal(t, minPlotWidth, PlotWidthFor(5, 0))
}
