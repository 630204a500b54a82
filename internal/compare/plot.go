package compare

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Class names the kind of fill a chart cell belongs to.
type Class int

const (
	// ClassArea is the area under a single series.
	ClassArea Class = iota
	// ClassFaster fills where the primary run beats the baseline.
	ClassFaster
	// ClassSlower fills where the primary run does not beat the baseline.
	ClassSlower
	classCount
)

const (
	defaultHeight       = 8
	minPlotWidth        = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	yAxisLabel          = "WPM"
	xAxisLabel          = "Time (seconds)"
)

var classColors = [classCount]string{
	ClassArea:   "\x1b[36m",
	ClassFaster: "\x1b[32m",
	ClassSlower: "\x1b[31m",
}

// Options controls chart rendering.
type Options struct {
	Title  string
	Width  int
	Height int
	// Axis captions; empty means "WPM" and "Time (seconds)".
	YLabel string
	XLabel string
	// Labels for the legend; empty entries fall back to defaults.
	PrimaryLabel string
	FasterLabel  string
	SlowerLabel  string
	// Paint colors a run of cells of one class. When nil, ANSI colors are
	// used if the writer is a terminal or ForceColor is set.
	Paint      func(Class, string) string
	ForceColor bool
	// Compact drops the title and axis caption lines.
	Compact bool
}

// Render writes the comparison as a braille area chart. Without a baseline it
// fills the area under the primary series; with one it fills between the two
// curves, split into faster and slower regions.
func Render(w io.Writer, c Comparison, opts Options) error {
	height := opts.Height
	if height <= 0 {
		height = defaultHeight
	}
	width := opts.Width
	if width <= 0 {
		width = PlotWidthFor(terminalWidth(), c.Max)
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	paint := opts.Paint
	if paint == nil {
		paint = ansiPainter(shouldUseColor(w, opts.ForceColor))
	}

	cells := fillCells(c, width, height)
	yMax := max(c.Max, 1)
	labels := makeAxisLabels(height, yMax)
	labelWidth := utf8.RuneCountInString(labels[0])

	var b strings.Builder
	if !opts.Compact {
		if opts.Title != "" {
			b.WriteString(opts.Title)
			b.WriteByte('\n')
		}
		b.WriteString(orDefault(opts.YLabel, yAxisLabel))
		b.WriteByte('\n')
	}
	for y := 0; y < height; y++ {
		fmt.Fprintf(&b, "%*s%s", labelWidth, labels[y], axisSeparator)
		writeRow(&b, cells, y, paint)
		b.WriteByte('\n')
	}
	b.WriteString(xAxisLine(labelWidth, width, c.Len(), orDefault(opts.XLabel, xAxisLabel)))
	b.WriteByte('\n')
	b.WriteString(renderLegend(c, opts, paint))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderString is Render into a string.
func RenderString(c Comparison, opts Options) string {
	var b strings.Builder
	if err := Render(&b, c, opts); err != nil {
		return ""
	}
	return b.String()
}

// PlotWidthFor computes a plot width that fits next to the axis labels
// within totalWidth.
func PlotWidthFor(totalWidth, maxValue int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := len(strconv.Itoa(max(maxValue, 1))) + utf8.RuneCountInString(axisSeparator)
	plotWidth := totalWidth - axisWidth
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

// fillCells returns one braille mask grid per class.
func fillCells(c Comparison, width, height int) [classCount][][]uint8 {
	var cells [classCount][][]uint8
	for i := range cells {
		cells[i] = makeCells(height, width)
	}
	if c.Len() == 0 {
		return cells
	}
	dotsX := width * 2
	dotsY := height * 4
	yMax := float64(max(c.Max, 1))

	primary := resampleSeries(toFloat(c.Primary), dotsX)
	var baseline []float64
	if c.withBaseline {
		baseline = resampleSeries(toFloat(c.Baseline), dotsX)
	}
	for x := 0; x < dotsX; x++ {
		top := valueToRow(primary[x], yMax, dotsY)
		if baseline == nil {
			for y := top; y < dotsY; y++ {
				setBrailleDot(cells[ClassArea], x, y)
			}
			continue
		}
		other := valueToRow(baseline[x], yMax, dotsY)
		class := ClassSlower
		if primary[x] > baseline[x] {
			class = ClassFaster
		}
		for y := min(top, other); y <= max(top, other); y++ {
			setBrailleDot(cells[class], x, y)
		}
	}
	return cells
}

func writeRow(b *strings.Builder, cells [classCount][][]uint8, y int, paint func(Class, string) string) {
	width := len(cells[0][y])
	var run strings.Builder
	runClass := Class(-1)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runClass >= 0 {
			b.WriteString(paint(runClass, run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}
	for x := 0; x < width; x++ {
		mask, class := composeCell(cells, x, y)
		if class != runClass {
			flush()
			runClass = class
		}
		run.WriteRune(brailleFromMask(mask))
	}
	flush()
}

// composeCell merges the masks of every class and picks the first class
// with a dot for the color.
func composeCell(cells [classCount][][]uint8, x, y int) (uint8, Class) {
	var mask uint8
	class := Class(-1)
	for i := range cells {
		m := cells[i][y][x]
		if m == 0 {
			continue
		}
		if class < 0 {
			class = Class(i)
		}
		mask |= m
	}
	return mask, class
}

func xAxisLine(labelWidth, width, samples int, caption string) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth+1))
	b.WriteString("└")
	b.WriteString(strings.Repeat("─", width+1))
	b.WriteByte('\n')
	left := "0"
	right := strconv.Itoa(max(samples-1, 0))
	pad := width + 1 - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	b.WriteString(strings.Repeat(" ", labelWidth+3))
	b.WriteString(left)
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(right)
	b.WriteString("  ")
	b.WriteString(caption)
	return b.String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func renderLegend(c Comparison, opts Options, paint func(Class, string) string) string {
	marker := string(brailleFromMask(0xff))
	if !c.withBaseline {
		label := orDefault(opts.PrimaryLabel, "Speed")
		return "Legend: " + paint(ClassArea, marker) + " " + label
	}
	faster := orDefault(opts.FasterLabel, "Faster")
	slower := orDefault(opts.SlowerLabel, "Slower")
	return "Legend: " + paint(ClassFaster, marker) + " " + faster + "  " + paint(ClassSlower, marker) + " " + slower
}

func ansiPainter(enabled bool) func(Class, string) string {
	return func(class Class, s string) string {
		if !enabled || class < 0 || class >= classCount {
			return s
		}
		return classColors[class] + s + colorReset
	}
}

func makeAxisLabels(height, yMax int) []string {
	labels := make([]string, height)
	labels[0] = strconv.Itoa(yMax)
	if height > 2 {
		labels[height/2] = strconv.Itoa(yMax / 2)
	}
	if height > 1 {
		labels[height-1] = "0"
	}
	return labels
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func toFloat(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// resampleSeries stretches or averages values to exactly width points.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	if len(values) > width {
		for i := 0; i < width; i++ {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	if len(values) == 1 || width == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(math.Floor(pos))
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

// valueToRow maps v in [0, yMax] to a dot row, 0 being the top.
func valueToRow(v, yMax float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := v / yMax
	row := int(math.Round((1 - pos) * float64(rows-1)))
	if row < 0 {
		row = 0
	}
	if row >= rows {
		row = rows - 1
	}
	return row
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
